package api

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestDeduper(t *testing.T) (*RedisDeduper, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisDeduper(client, time.Minute), mr
}

func TestRedisDeduperAdd(t *testing.T) {
	d, _ := newTestDeduper(t)
	ctx := context.Background()

	added, err := d.Add(ctx, "u1", "k1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("expected first add to succeed")
	}

	added, err = d.Add(ctx, "u1", "k1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added {
		t.Fatal("expected replayed key to be rejected")
	}
}

func TestRedisDeduperScopedByUser(t *testing.T) {
	d, _ := newTestDeduper(t)
	ctx := context.Background()

	if _, err := d.Add(ctx, "u1", "k1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	added, err := d.Add(ctx, "u2", "k1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("another user's identical key must be independent")
	}
}

func TestRedisDeduperRemoveAllowsRetry(t *testing.T) {
	d, _ := newTestDeduper(t)
	ctx := context.Background()

	if _, err := d.Add(ctx, "u1", "k1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.Remove(ctx, "u1", "k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	added, err := d.Add(ctx, "u1", "k1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("expected key to be addable again after removal")
	}
}

func TestRedisDeduperKeyExpires(t *testing.T) {
	d, mr := newTestDeduper(t)
	ctx := context.Background()

	if _, err := d.Add(ctx, "u1", "k1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	added, err := d.Add(ctx, "u1", "k1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatal("expected key to expire")
	}
}

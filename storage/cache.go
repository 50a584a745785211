package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"boardkit/domain"
)

type backend interface {
	Boards(ctx context.Context, userID string) ([]domain.Board, error)
	TodosByBoard(ctx context.Context, userID, boardID string) ([]domain.Todo, error)
	CreateBoard(ctx context.Context, board domain.Board) error
	RenameBoard(ctx context.Context, userID, boardID, name string) (domain.Board, error)
	DeleteBoard(ctx context.Context, userID, boardID string) error
	CreateTodo(ctx context.Context, todo domain.Todo) error
	UpdateTodo(ctx context.Context, userID, todoID string, patch domain.TodoPatch) (domain.Todo, error)
	DeleteTodo(ctx context.Context, userID, todoID string) (domain.Todo, error)
}

// Cache wraps a Store with Redis-backed caching of board and todo lists.
// Mutations pass through to the backing store and evict the affected keys.
// Redis failures degrade to the backing store without surfacing errors.
type Cache struct {
	*Store
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &Cache{
		base:  base,
		redis: client,
		ttl:   ttl,
	}
	if s, ok := base.(*Store); ok {
		c.Store = s
	}
	return c
}

func (c *Cache) Boards(ctx context.Context, userID string) ([]domain.Board, error) {
	if boards, ok := loadCached[[]domain.Board](ctx, c.redis, boardsCacheKey(userID)); ok {
		return boards, nil
	}

	boards, err := c.base.Boards(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.storeCached(ctx, boardsCacheKey(userID), boards)
	return boards, nil
}

func (c *Cache) TodosByBoard(ctx context.Context, userID, boardID string) ([]domain.Todo, error) {
	if todos, ok := loadCached[[]domain.Todo](ctx, c.redis, todosCacheKey(userID, boardID)); ok {
		return todos, nil
	}

	todos, err := c.base.TodosByBoard(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	c.storeCached(ctx, todosCacheKey(userID, boardID), todos)
	return todos, nil
}

func (c *Cache) CreateBoard(ctx context.Context, board domain.Board) error {
	if err := c.base.CreateBoard(ctx, board); err != nil {
		return err
	}
	c.evict(ctx, boardsCacheKey(board.UserID))
	return nil
}

func (c *Cache) RenameBoard(ctx context.Context, userID, boardID, name string) (domain.Board, error) {
	board, err := c.base.RenameBoard(ctx, userID, boardID, name)
	if err != nil {
		return domain.Board{}, err
	}
	c.evict(ctx, boardsCacheKey(userID))
	return board, nil
}

func (c *Cache) DeleteBoard(ctx context.Context, userID, boardID string) error {
	if err := c.base.DeleteBoard(ctx, userID, boardID); err != nil {
		return err
	}
	c.evict(ctx, boardsCacheKey(userID), todosCacheKey(userID, boardID))
	return nil
}

func (c *Cache) CreateTodo(ctx context.Context, todo domain.Todo) error {
	if err := c.base.CreateTodo(ctx, todo); err != nil {
		return err
	}
	c.evict(ctx, todosCacheKey(todo.UserID, todo.BoardID))
	return nil
}

func (c *Cache) UpdateTodo(ctx context.Context, userID, todoID string, patch domain.TodoPatch) (domain.Todo, error) {
	todo, err := c.base.UpdateTodo(ctx, userID, todoID, patch)
	if err != nil {
		return domain.Todo{}, err
	}
	c.evict(ctx, todosCacheKey(userID, todo.BoardID))
	return todo, nil
}

func (c *Cache) DeleteTodo(ctx context.Context, userID, todoID string) (domain.Todo, error) {
	todo, err := c.base.DeleteTodo(ctx, userID, todoID)
	if err != nil {
		return domain.Todo{}, err
	}
	c.evict(ctx, todosCacheKey(userID, todo.BoardID))
	return todo, nil
}

func loadCached[T any](ctx context.Context, client *redis.Client, key string) (T, bool) {
	var zero T
	if client == nil {
		return zero, false
	}
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = client.Del(ctx, key).Err()
		}
		return zero, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		_ = client.Del(ctx, key).Err()
		return zero, false
	}
	return out, true
}

func (c *Cache) storeCached(ctx context.Context, key string, value any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, keys...).Result()
}

func boardsCacheKey(userID string) string {
	return "boards:" + userID
}

func todosCacheKey(userID, boardID string) string {
	return "todos:" + userID + ":" + boardID
}

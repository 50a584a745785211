// boardkit-init provisions the tables and queues the API expects. It is run
// once per environment before the first deploy and is safe to re-run.
package main

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	log "github.com/sirupsen/logrus"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	if connStr == "" {
		log.Fatal("missing STORAGE_CONNECTION_STRING")
	}
	ctx := context.Background()

	tables := []string{
		os.Getenv("USERS_TABLE"),
		os.Getenv("BOARDS_TABLE"),
		os.Getenv("TODOS_TABLE"),
	}
	for _, name := range tables {
		if name == "" {
			continue
		}
		if err := ensureTable(ctx, connStr, name); err != nil {
			log.Fatalf("table %s: %v", name, err)
		}
		log.WithField("table", name).Info("table ready")
	}

	if queue := os.Getenv("EVENTS_QUEUE"); queue != "" {
		if err := ensureQueue(ctx, connStr, queue); err != nil {
			log.Fatalf("queue %s: %v", queue, err)
		}
		log.WithField("queue", queue).Info("queue ready")
	}
}

func ensureTable(ctx context.Context, connStr, name string) error {
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, nil)
	if err != nil {
		return err
	}
	_, err = svc.NewClient(name).CreateTable(ctx, nil)
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
		return nil
	}
	return err
}

func ensureQueue(ctx context.Context, connStr, name string) error {
	q, err := azqueue.NewQueueClientFromConnectionString(connStr, name, nil)
	if err != nil {
		return err
	}
	_, err = q.Create(ctx, nil)
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.ErrorCode == "QueueAlreadyExists" {
		return nil
	}
	return err
}

package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/arb-ingest/internal/config"
)

// Connect creates the store client and verifies it is reachable.
func Connect(ctx context.Context, cfg config.StoreConfig) (*redis.Client, error) {
	client := redis.NewClient(BuildOptions(cfg))

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping store %s: %w", BuildAddr(cfg), err)
	}

	return client, nil
}

// Open creates the store client without a reachability check.
// The ingester uses this so a store that is still starting up
// does not prevent the process from booting.
func Open(cfg config.StoreConfig) *redis.Client {
	return redis.NewClient(BuildOptions(cfg))
}

// Ping verifies the store connection is healthy.
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	invapp "github.com/horyco/backend/internal/application/inventory"
	"github.com/horyco/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisStockSummaryCache implements StockSummaryCache using Redis. Suitable
// for deployments where several instances serve the same warehouses and need
// to share cached valuations.
type RedisStockSummaryCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStockSummaryCache creates a Redis-backed summary cache and verifies
// the connection before returning.
func NewRedisStockSummaryCache(cfg config.RedisConfig) (*RedisStockSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStockSummaryCache{
		client:    client,
		keyPrefix: "stock:summary:",
	}, nil
}

// NewRedisStockSummaryCacheWithClient creates a cache on an existing client.
// Useful for testing or when sharing a client across components.
func NewRedisStockSummaryCacheWithClient(client *redis.Client, keyPrefix string) *RedisStockSummaryCache {
	if keyPrefix == "" {
		keyPrefix = "stock:summary:"
	}
	return &RedisStockSummaryCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached summary for a warehouse, if present
func (c *RedisStockSummaryCache) Get(ctx context.Context, warehouseID uuid.UUID) (*invapp.WarehouseStockSummary, bool, error) {
	payload, err := c.client.Get(ctx, c.key(warehouseID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached summary: %w", err)
	}

	var summary invapp.WarehouseStockSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached summary: %w", err)
	}
	return &summary, true, nil
}

// Set stores a summary with the given TTL
func (c *RedisStockSummaryCache) Set(ctx context.Context, summary *invapp.WarehouseStockSummary, ttl time.Duration) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key(summary.WarehouseID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary for a warehouse
func (c *RedisStockSummaryCache) Invalidate(ctx context.Context, warehouseID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(warehouseID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached summary: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisStockSummaryCache) Close() error {
	return c.client.Close()
}

func (c *RedisStockSummaryCache) key(warehouseID uuid.UUID) string {
	return c.keyPrefix + warehouseID.String()
}

var _ invapp.StockSummaryCache = (*RedisStockSummaryCache)(nil)

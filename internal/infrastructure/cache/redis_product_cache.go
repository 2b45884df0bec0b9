package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
)

const activeCatalogKey = "catalog:active"

// RedisOptions configures the client built by NewRedisClient.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient creates a pooled client and verifies connectivity.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ProductCache implements port.ProductCache with the active catalog stored
// as a single JSON value.
type ProductCache struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewProductCache creates a cache under keyPrefix. A non-positive ttl keeps
// entries until invalidated.
func NewProductCache(client redis.Cmdable, keyPrefix string, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, key: keyPrefix + activeCatalogKey, ttl: max(ttl, 0)}
}

// GetActive returns the cached catalog; ok is false on a miss.
func (c *ProductCache) GetActive(ctx context.Context) ([]model.ProductCandidate, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", c.key, err)
	}

	var products []model.ProductCandidate
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	return products, true, nil
}

// SetActive stores the catalog.
func (c *ProductCache) SetActive(ctx context.Context, products []model.ProductCandidate) error {
	if products == nil {
		products = []model.ProductCandidate{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

// Invalidate drops the cached catalog.
func (c *ProductCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", c.key, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *ProductCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/invoicing"
	"github.com/nguyenhieubp/InvoiceFlowServer-sub004/internal/domain/shared"
)

// notFoundSentinel marks a cached negative lookup. Unknown codes are
// asked for on every order line, so caching the miss matters as much as
// caching the hit.
const notFoundSentinel = "!"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient creates a Redis client and verifies the connection.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisReferenceCache decorates the catalog and department lookups with a
// shared Redis cache. Item and branch masters change rarely; caching them
// keeps the batch driver from hammering the POS API with one lookup per
// order line. Cache failures degrade to the underlying lookup.
type RedisReferenceCache struct {
	client      *redis.Client
	catalog     invoicing.CatalogLookup
	departments invoicing.DepartmentLookup
	ttl         time.Duration
	logger      *zap.Logger
}

// NewRedisReferenceCache creates a caching decorator over the given
// lookups.
func NewRedisReferenceCache(
	client *redis.Client,
	catalog invoicing.CatalogLookup,
	departments invoicing.DepartmentLookup,
	ttl time.Duration,
	logger *zap.Logger,
) *RedisReferenceCache {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisReferenceCache{
		client:      client,
		catalog:     catalog,
		departments: departments,
		ttl:         ttl,
		logger:      logger,
	}
}

// ByItemCode resolves an item through the cache.
func (c *RedisReferenceCache) ByItemCode(ctx context.Context, code string) (*invoicing.CatalogItem, error) {
	key := "reference:item:" + code

	var cached invoicing.CatalogItem
	hit, negative := c.get(ctx, key, &cached)
	if negative {
		return nil, shared.ErrNotFound
	}
	if hit {
		return &cached, nil
	}

	item, err := c.catalog.ByItemCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			c.setNegative(ctx, key)
		}
		return nil, err
	}
	c.set(ctx, key, item)
	return item, nil
}

// ByBranchCode resolves a branch through the cache.
func (c *RedisReferenceCache) ByBranchCode(ctx context.Context, code string) (*invoicing.Department, error) {
	key := "reference:branch:" + code

	var cached invoicing.Department
	hit, negative := c.get(ctx, key, &cached)
	if negative {
		return nil, shared.ErrNotFound
	}
	if hit {
		return &cached, nil
	}

	dept, err := c.departments.ByBranchCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			c.setNegative(ctx, key)
		}
		return nil, err
	}
	c.set(ctx, key, dept)
	return dept, nil
}

// Invalidate drops every cached reference entry. Exposed for the refresh
// endpoint so operators can force a reload after master-data changes.
func (c *RedisReferenceCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "reference:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate reference cache: %w", err)
		}
	}
	return iter.Err()
}

func (c *RedisReferenceCache) get(ctx context.Context, key string, out any) (hit, negative bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false, false
	}
	if raw == notFoundSentinel {
		return false, true
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		c.logger.Warn("reference cache entry corrupted", zap.String("key", key), zap.Error(err))
		return false, false
	}
	return true, false
}

func (c *RedisReferenceCache) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisReferenceCache) setNegative(ctx context.Context, key string) {
	// Negative entries expire faster so newly created items show up soon.
	if err := c.client.Set(ctx, key, notFoundSentinel, c.ttl/4).Err(); err != nil {
		c.logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Interface guards
var (
	_ invoicing.CatalogLookup    = (*RedisReferenceCache)(nil)
	_ invoicing.DepartmentLookup = (*RedisReferenceCache)(nil)
)

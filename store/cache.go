package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jitmemory/jitmemory/types"
)

// CachedStatsStore wraps a Store with a redis-backed, read-through cache
// for StatsByOwner. Page writes and owner-scoped deletes invalidate that
// owner's cached stats rather than trying to update them in place, since a
// page/abstract write can change count, token totals, and the min/max
// created_at bounds all at once. DeletePage and unscoped cleanups
// (owner == "") invalidate nothing; those entries expire on their TTL.
type CachedStatsStore struct {
	Store
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStatsStore wraps next with a redis read-through cache for
// StatsByOwner. ttl bounds how long a cached entry is trusted.
func NewCachedStatsStore(next Store, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStatsStore {
	return &CachedStatsStore{
		Store:  next,
		redis:  rdb,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "store_cache")),
	}
}

func statsCacheKey(owner string) string {
	return "jitmemory:stats:" + owner
}

// StatsByOwner overrides the embedded Store's implementation with a
// read-through cache.
func (c *CachedStatsStore) StatsByOwner(ctx context.Context, owner string) (types.OwnerStats, error) {
	key := statsCacheKey(owner)

	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var stats types.OwnerStats
		if jsonErr := json.Unmarshal(data, &stats); jsonErr == nil {
			return stats, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("stats cache get failed", zap.String("owner", owner), zap.Error(err))
	}

	stats, err := c.Store.StatsByOwner(ctx, owner)
	if err != nil {
		return types.OwnerStats{}, err
	}

	if data, err := json.Marshal(stats); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("stats cache set failed", zap.String("owner", owner), zap.Error(err))
		}
	}
	return stats, nil
}

// StorePage invalidates owner's cached stats after a successful write.
func (c *CachedStatsStore) StorePage(ctx context.Context, page types.Page) error {
	if err := c.Store.StorePage(ctx, page); err != nil {
		return err
	}
	c.invalidate(ctx, page.Owner)
	return nil
}

// StorePageAndAbstract invalidates owner's cached stats after a successful
// write.
func (c *CachedStatsStore) StorePageAndAbstract(ctx context.Context, page types.Page, abstract types.Abstract) error {
	if err := c.Store.StorePageAndAbstract(ctx, page, abstract); err != nil {
		return err
	}
	c.invalidate(ctx, page.Owner)
	return nil
}

// DeletePage does not invalidate any cached stats: the owner of the
// deleted page is unknown to this layer, so it falls through to the
// embedded Store and the owner's cached entry stays until its TTL expires.
func (c *CachedStatsStore) DeletePage(ctx context.Context, id string) error {
	return c.Store.DeletePage(ctx, id)
}

// DeleteByOwner invalidates owner's cached stats after a successful
// delete.
func (c *CachedStatsStore) DeleteByOwner(ctx context.Context, owner string) error {
	if err := c.Store.DeleteByOwner(ctx, owner); err != nil {
		return err
	}
	c.invalidate(ctx, owner)
	return nil
}

// CleanupExpired invalidates owner's cached stats when owner is scoped;
// a global cleanup (owner == "") cannot cheaply invalidate every owner's
// entry, so those entries simply expire on their own TTL.
func (c *CachedStatsStore) CleanupExpired(ctx context.Context, maxAge time.Duration, owner string) (int64, error) {
	n, err := c.Store.CleanupExpired(ctx, maxAge, owner)
	if err != nil {
		return n, err
	}
	if owner != "" {
		c.invalidate(ctx, owner)
	}
	return n, nil
}

// DeleteBefore invalidates owner's cached stats when owner is scoped.
func (c *CachedStatsStore) DeleteBefore(ctx context.Context, cutoff time.Time, owner string) (int64, error) {
	n, err := c.Store.DeleteBefore(ctx, cutoff, owner)
	if err != nil {
		return n, err
	}
	if owner != "" {
		c.invalidate(ctx, owner)
	}
	return n, nil
}

func (c *CachedStatsStore) invalidate(ctx context.Context, owner string) {
	if err := c.redis.Del(ctx, statsCacheKey(owner)).Err(); err != nil {
		c.logger.Warn("stats cache invalidate failed", zap.String("owner", owner), zap.Error(err))
	}
}

// Close closes both the embedded Store and the redis client.
func (c *CachedStatsStore) Close() error {
	storeErr := c.Store.Close()
	redisErr := c.redis.Close()
	if storeErr != nil {
		return storeErr
	}
	if redisErr != nil {
		return fmt.Errorf("store: close redis client: %w", redisErr)
	}
	return nil
}

package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/s/courseStore/internal/logger"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Cache mirrors OwnedProductIDs in Redis for display purposes. Entries may
// be stale for up to the TTL, so access checks must use HasAccess instead.
// A nil Redis client turns the cache into a pass-through.
type Cache struct {
	rdb   *redis.Client
	db    *gorm.DB
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group
}

func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewCache(rdb *redis.Client, db *gorm.DB, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, db: db, ttl: ttl, log: log.With("service", "EntitlementCache")}
}

func cacheKey(userID string) string {
	return fmt.Sprintf("entitlement:owned:%s", userID)
}

// ProductIDs returns the cached owned product ids, loading them from the
// database on a miss. Redis failures fall back to the database.
func (c *Cache) ProductIDs(ctx context.Context, userID string) ([]string, error) {
	key := cacheKey(userID)

	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, key).Result()
		switch {
		case err == nil:
			var ids []string
			if jerr := json.Unmarshal([]byte(val), &ids); jerr == nil {
				return ids, nil
			}
			c.log.Warn("discarding malformed cache entry", "user_id", userID)
		case !errors.Is(err, redis.Nil):
			c.log.Warn("redis get failed", "user_id", userID, "error", err)
		}
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		ids, err := OwnedProductIDs(ctx, c.db, userID)
		if err != nil {
			return nil, err
		}
		if c.rdb != nil {
			b, _ := json.Marshal(ids)
			if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
				c.log.Warn("redis set failed", "user_id", userID, "error", err)
			}
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Invalidate drops the cached entry after the ledger changed.
func (c *Cache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.rdb == nil || userID == "" {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn("redis del failed", "user_id", userID, "error", err)
	}
}

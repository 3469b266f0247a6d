// Package cache keeps catalog search pages in redis in front of the
// catalog repository.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"quotedesk/config"
	"quotedesk/services"
)

const (
	keyPrefix  = "quotedesk:catalog:"
	versionKey = keyPrefix + "version"
)

// NewRedisClient connects to redis and pings it once.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// SearchCache serves catalog search pages from redis and falls back to the
// wrapped searcher on a miss or on any redis error. Cached pages live under
// a version number; Invalidate bumps it so every older page is ignored and
// left to expire.
type SearchCache struct {
	client redis.Cmdable
	next   services.CatalogSearcher
	ttl    time.Duration
	logger *zap.Logger
}

// NewSearchCache wraps next.
func NewSearchCache(client redis.Cmdable, next services.CatalogSearcher, ttl time.Duration, logger *zap.Logger) *SearchCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchCache{client: client, next: next, ttl: ttl, logger: logger}
}

// queryNormalizer is implemented by searchers that clamp paging, such as
// services.CatalogRepository.
type queryNormalizer interface {
	Normalize(q services.CatalogQuery) services.CatalogQuery
}

// Search implements services.CatalogSearcher. Queries are normalized before
// keying so equivalent paging shares one cached page.
func (c *SearchCache) Search(ctx context.Context, q services.CatalogQuery) (services.CatalogPage, error) {
	if n, ok := c.next.(queryNormalizer); ok {
		q = n.Normalize(q)
	}
	version, err := c.version(ctx)
	if err != nil {
		c.logger.Warn("catalog cache unavailable, querying repository", zap.Error(err))
		return c.next.Search(ctx, q)
	}
	key := pageKey(version, q)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var page services.CatalogPage
		if err := json.Unmarshal(raw, &page); err == nil {
			return page, nil
		}
		c.logger.Warn("discarding unreadable cached catalog page", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("catalog cache read failed, querying repository", zap.String("key", key), zap.Error(err))
		return c.next.Search(ctx, q)
	}

	page, err := c.next.Search(ctx, q)
	if err != nil {
		return services.CatalogPage{}, err
	}

	if data, err := json.Marshal(page); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return page, nil
}

// Invalidate drops every cached page by moving to a new version.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("bump catalog cache version: %w", err)
	}
	return nil
}

func (c *SearchCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, versionKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

// pageKey hashes the query so arbitrary user text never ends up in a key.
func pageKey(version int64, q services.CatalogQuery) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s\x00%d\x00%d", q.Query, q.Limit, q.Offset)))
	return fmt.Sprintf("%sv%d:%s", keyPrefix, version, hex.EncodeToString(sum[:]))
}

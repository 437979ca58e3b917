package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/karlseguin/ccache/v3"
	"go.uber.org/zap"
)

// maxLocalTTL bounds how stale a process-local entry can get when another
// instance invalidates the shared tier.
const maxLocalTTL = 30 * time.Second

// TieredCache serves reads from an in-process LRU first and falls back to a
// shared cache (Redis) when one is configured.
type TieredCache struct {
	local  *ccache.Cache[[]byte]
	remote domain.Cache
	logger *logger.Logger
}

// NewTieredCache builds the cache. remote may be nil for a local-only cache.
func NewTieredCache(localSize int64, remote domain.Cache, log *logger.Logger) *TieredCache {
	if localSize <= 0 {
		localSize = 1000
	}
	return &TieredCache{
		local:  ccache.New(ccache.Configure[[]byte]().MaxSize(localSize)),
		remote: remote,
		logger: log.Named("TieredCache"),
	}
}

func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if item := c.local.Get(key); item != nil && !item.Expired() {
		return item.Value(), nil
	}
	if c.remote == nil {
		return nil, domain.ErrCacheMiss
	}
	val, err := c.remote.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			c.logger.Warn("Shared cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		}
		return nil, domain.ErrCacheMiss
	}
	c.local.Set(key, val, maxLocalTTL)
	return val, nil
}

func (c *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.local.Set(key, value, min(ttl, maxLocalTTL))
	if c.remote == nil {
		return nil
	}
	return c.remote.Set(ctx, key, value, ttl)
}

func (c *TieredCache) Delete(ctx context.Context, key string) error {
	c.local.Delete(key)
	if c.remote == nil {
		return nil
	}
	return c.remote.Delete(ctx, key)
}

func (c *TieredCache) Close() {
	c.local.Stop()
}

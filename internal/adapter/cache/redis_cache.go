package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/config"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Address, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return rdb, nil
}

type RedisCache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisCache(client *redis.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, logger: log.Named("RedisCache")}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		r.logger.Error("Redis GET failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Error("Redis SET failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Redis DEL failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

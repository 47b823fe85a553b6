package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/group-notice-bot/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewCacheServiceFromClient(client, logger), nil
}

// NewCacheServiceFromClient wraps an existing client without pinging it.
func NewCacheServiceFromClient(client *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{client: client, logger: logger}
}

// GetRaw returns the value at key; ok is false when the key is absent.
func (c *CacheService) GetRaw(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return "", false, errors.NewCacheError("get failed", "get", key, err)
	}
	return value, true, nil
}

func (c *CacheService) SetRaw(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

// Del returns the number of keys removed.
func (c *CacheService) Del(ctx context.Context, key string) (int64, error) {
	deleted, err := c.client.Del(ctx, key).Result()
	if err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return 0, errors.NewCacheError("delete failed", "del", key, err)
	}
	return deleted, nil
}

// HSetNX sets field only if it does not exist and reports whether it was set.
func (c *CacheService) HSetNX(ctx context.Context, key, field, value string) (bool, error) {
	set, err := c.client.HSetNX(ctx, key, field, value).Result()
	if err != nil {
		c.logger.Error("Cache hsetnx failed", zap.String("key", key), zap.String("field", field), zap.Error(err))
		return false, errors.NewCacheError("hsetnx failed", "hsetnx", key, err)
	}
	return set, nil
}

// HGet returns the field value; ok is false when the field is absent.
func (c *CacheService) HGet(ctx context.Context, key, field string) (string, bool, error) {
	value, err := c.client.HGet(ctx, key, field).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		c.logger.Error("Cache hget failed", zap.String("key", key), zap.String("field", field), zap.Error(err))
		return "", false, errors.NewCacheError("hget failed", "hget", key, err)
	}
	return value, true, nil
}

func (c *CacheService) HExists(ctx context.Context, key, field string) (bool, error) {
	exists, err := c.client.HExists(ctx, key, field).Result()
	if err != nil {
		return false, errors.NewCacheError("hexists failed", "hexists", key, err)
	}
	return exists, nil
}

// HDel returns the number of fields removed.
func (c *CacheService) HDel(ctx context.Context, key, field string) (int64, error) {
	removed, err := c.client.HDel(ctx, key, field).Result()
	if err != nil {
		c.logger.Error("Cache hdel failed", zap.String("key", key), zap.String("field", field), zap.Error(err))
		return 0, errors.NewCacheError("hdel failed", "hdel", key, err)
	}
	return removed, nil
}

func (c *CacheService) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	values, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.NewCacheError("hgetall failed", "hgetall", key, err)
	}
	return values, nil
}

func (c *CacheService) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *CacheService) IsConnected(ctx context.Context) bool {
	return c.client.Ping(ctx).Err() == nil
}

func (c *CacheService) WaitUntilReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if c.IsConnected(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.NewCacheError("redis not ready", "ping", "", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *CacheService) GetRedisClient() *redis.Client {
	return c.client
}

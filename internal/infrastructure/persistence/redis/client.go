package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/logger"
)

// Redis 只保存已注销令牌的 jti，数据可丢失，不参与借阅业务
const defaultPingTimeout = 3 * time.Second

func clientOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr(),
		ClientName:   cfg.ClientName,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// NewClient 连接令牌黑名单所在的 Redis，启动时不可达直接失败
func NewClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(clientOptions(cfg.Redis))

	timeout := cfg.Redis.DialTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接令牌黑名单Redis失败(%s): %w", cfg.Redis.Addr(), err)
	}

	logger.Info("令牌黑名单Redis已连接", map[string]interface{}{
		"addr":       cfg.Redis.Addr(),
		"db":         cfg.Redis.DB,
		"key_prefix": cfg.Redis.KeyPrefix,
	})
	return client, nil
}

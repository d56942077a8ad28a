package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// TokenStore 已注销令牌黑名单
//
// 令牌无状态，注销后在过期前仍能通过签名校验，
// 因此把 jti 写入 Redis，TTL 取令牌剩余有效期，过期后自动清理。
type TokenStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewTokenStore keyPrefix 为空时使用 library
func NewTokenStore(client *redis.Client, keyPrefix string) *TokenStore {
	if keyPrefix == "" {
		keyPrefix = "library"
	}
	return &TokenStore{client: client, keyPrefix: keyPrefix}
}

func (s *TokenStore) blacklistKey(tokenID string) string {
	return fmt.Sprintf("%s:token:blacklist:%s", s.keyPrefix, tokenID)
}

// Revoke ttl <= 0 时令牌已过期，无需记录
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.blacklistKey(tokenID), "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "注销Token失败")
	}
	return nil
}

func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.blacklistKey(tokenID)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查Token黑名单失败")
	}
	return n > 0, nil
}

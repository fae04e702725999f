package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/storefront/internal/auth/domain"
)

type revocationRedisRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRevocationRedisRepository 创建基于 Redis 的令牌注销仓储
func NewRevocationRedisRepository(client redis.UniversalClient) domain.RevocationRepository {
	return &revocationRedisRepository{
		client: client,
		prefix: "auth:revoked:",
	}
}

func (r *revocationRedisRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	key := r.prefix + tokenID
	if err := r.client.Set(ctx, key, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *revocationRedisRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, r.prefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}

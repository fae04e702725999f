package domain

import (
	"context"
	"time"
)

// RevocationRepository 已注销令牌存储，记录保留到令牌自然过期
type RevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

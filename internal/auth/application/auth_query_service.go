package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/auth/domain"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// AuthQueryService 认证查询服务
type AuthQueryService struct {
	users       UserDirectory
	tokens      domain.TokenManager
	revocations domain.RevocationRepository
}

// NewAuthQueryService 创建认证查询服务实例
func NewAuthQueryService(users UserDirectory, tokens domain.TokenManager, revocations domain.RevocationRepository) *AuthQueryService {
	return &AuthQueryService{
		users:       users,
		tokens:      tokens,
		revocations: revocations,
	}
}

// Authenticate 校验令牌并返回调用方身份
func (s *AuthQueryService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.revocations != nil && id.TokenID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, id.TokenID)
		if err != nil {
			// 存储不可用时不阻断请求
			logger.Warn(ctx, "Token revocation check failed", "error", err)
		} else if revoked {
			return nil, errorx.Unauthenticated("token revoked")
		}
	}
	return id, nil
}

// Me 返回当前用户
func (s *AuthQueryService) Me(ctx context.Context, id *domain.Identity) (*userdomain.User, error) {
	return s.users.GetUser(ctx, id.UserID)
}

// FindByEmail 根据邮箱查找用户，不存在时返回 nil
func (s *AuthQueryService) FindByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return s.users.FindByEmail(ctx, email)
}

// FindByID 根据 ID 查找用户
func (s *AuthQueryService) FindByID(ctx context.Context, id uint) (*userdomain.User, error) {
	return s.users.GetUser(ctx, id)
}

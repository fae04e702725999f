package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/auth/domain"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
)

// AuthService 认证应用服务，作为门面服务整合命令和查询服务
type AuthService struct {
	commandService *AuthCommandService
	queryService   *AuthQueryService
}

// NewAuthService 创建认证应用服务
func NewAuthService(
	users UserDirectory,
	hasher domain.PasswordHasher,
	tokens domain.TokenManager,
	revocations domain.RevocationRepository,
) *AuthService {
	return &AuthService{
		commandService: NewAuthCommandService(users, hasher, tokens, revocations),
		queryService:   NewAuthQueryService(users, tokens, revocations),
	}
}

// Register 注册（命令操作）
func (s *AuthService) Register(ctx context.Context, cmd RegisterCommand) (*AuthResult, error) {
	return s.commandService.Register(ctx, cmd)
}

// Login 登录（命令操作）
func (s *AuthService) Login(ctx context.Context, cmd LoginCommand) (*AuthResult, error) {
	return s.commandService.Login(ctx, cmd)
}

// Logout 注销当前令牌（命令操作）
func (s *AuthService) Logout(ctx context.Context, id *domain.Identity) error {
	return s.commandService.Logout(ctx, id)
}

// VerifyCredentials 校验凭证（查询操作）
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*userdomain.User, error) {
	return s.commandService.VerifyCredentials(ctx, email, password)
}

// Authenticate 校验令牌（查询操作）
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	return s.queryService.Authenticate(ctx, token)
}

// Me 当前用户（查询操作）
func (s *AuthService) Me(ctx context.Context, id *domain.Identity) (*userdomain.User, error) {
	return s.queryService.Me(ctx, id)
}

// FindByEmail 根据邮箱查找用户（查询操作）
func (s *AuthService) FindByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return s.queryService.FindByEmail(ctx, email)
}

// FindByID 根据 ID 查找用户（查询操作）
func (s *AuthService) FindByID(ctx context.Context, id uint) (*userdomain.User, error) {
	return s.queryService.FindByID(ctx, id)
}

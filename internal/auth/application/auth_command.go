package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/auth/domain"
	userapp "github.com/wyfcoding/storefront/internal/user/application"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/validation"
)

// RegisterCommand 注册命令
type RegisterCommand struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"max=32"`
	Address  string `json:"address" validate:"max=512"`
}

// LoginCommand 登录命令
type LoginCommand struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult 登录/注册结果
type AuthResult struct {
	Token     string
	ExpiresAt int64
	User      *userdomain.User
}

// UserDirectory 用户上下文提供的能力
type UserDirectory interface {
	CreateUser(ctx context.Context, cmd userapp.CreateUserCommand) (*userdomain.User, error)
	GetUser(ctx context.Context, id uint) (*userdomain.User, error)
	FindByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// dummyComparer 用户不存在时执行一次等价耗时的比较
type dummyComparer interface {
	CompareDummy(password string)
}

// AuthCommandService 认证命令服务
type AuthCommandService struct {
	users       UserDirectory
	hasher      domain.PasswordHasher
	tokens      domain.TokenManager
	revocations domain.RevocationRepository
}

// NewAuthCommandService 创建认证命令服务实例，revocations 可为 nil
func NewAuthCommandService(
	users UserDirectory,
	hasher domain.PasswordHasher,
	tokens domain.TokenManager,
	revocations domain.RevocationRepository,
) *AuthCommandService {
	return &AuthCommandService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
	}
}

// Register 处理用户注册，新用户角色固定为 CLIENT
func (s *AuthCommandService) Register(ctx context.Context, cmd RegisterCommand) (*AuthResult, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, errorx.Internal(err, "failed to look up user")
	}
	if existing != nil {
		return nil, errorx.Conflict("email %s is already registered", userdomain.NormalizeEmail(cmd.Email))
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, errorx.Internal(err, "failed to hash password")
	}

	user, err := s.users.CreateUser(ctx, userapp.CreateUserCommand{
		Email:        cmd.Email,
		PasswordHash: hash,
		Name:         cmd.Name,
		Phone:        cmd.Phone,
		Address:      cmd.Address,
		Role:         userdomain.RoleClient,
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "User registered", "user_id", user.ID)
	return s.issue(user)
}

// Login 处理用户登录
func (s *AuthCommandService) Login(ctx context.Context, cmd LoginCommand) (*AuthResult, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	user, err := s.VerifyCredentials(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		logger.Warn(ctx, "Login failed", "email", userdomain.NormalizeEmail(cmd.Email))
		return nil, errorx.Unauthenticated("invalid credentials")
	}
	return s.issue(user)
}

// VerifyCredentials 校验邮箱与密码，不匹配或用户已停用时返回 nil
func (s *AuthCommandService) VerifyCredentials(ctx context.Context, email, password string) (*userdomain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, errorx.Internal(err, "failed to look up user")
	}
	if user == nil {
		if d, ok := s.hasher.(dummyComparer); ok {
			d.CompareDummy(password)
		}
		return nil, nil
	}
	if !s.hasher.Compare(user.PasswordHash, password) || !user.Active {
		return nil, nil
	}
	return user, nil
}

// Logout 注销当前令牌
func (s *AuthCommandService) Logout(ctx context.Context, id *domain.Identity) error {
	if s.revocations == nil || id.TokenID == "" {
		return nil
	}
	if err := s.revocations.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return errorx.Internal(err, "failed to revoke token")
	}
	return nil
}

func (s *AuthCommandService) issue(user *userdomain.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, errorx.Internal(err, "failed to issue token")
	}
	return &AuthResult{Token: token, ExpiresAt: exp.Unix(), User: user}, nil
}

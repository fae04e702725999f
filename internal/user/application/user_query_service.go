package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// UserQueryService 用户查询服务
type UserQueryService struct {
	repo domain.UserRepository
}

// NewUserQueryService 创建新的用户查询服务
func NewUserQueryService(repo domain.UserRepository) *UserQueryService {
	return &UserQueryService{
		repo: repo,
	}
}

// GetUserByID 根据ID获取用户
func (s *UserQueryService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errorx.NotFound("user %d not found", id)
	}
	return user, nil
}

// FindByEmail 根据邮箱查找用户，不存在时返回 nil
func (s *UserQueryService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

// ListUsers 分页列出用户
func (s *UserQueryService) ListUsers(ctx context.Context, page, pageSize int) ([]*domain.User, int64, error) {
	p := utils.NewPagination(page, pageSize)
	return s.repo.List(ctx, p.Offset(), p.Limit())
}

package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/user/domain"
)

// UserService 用户应用服务，作为门面服务整合命令和查询服务
type UserService struct {
	commandService *UserCommandService
	queryService   *UserQueryService
}

// NewUserService 创建新的用户应用服务
func NewUserService(repo domain.UserRepository, publisher domain.EventPublisher, tx TxManager) *UserService {
	return &UserService{
		commandService: NewUserCommandService(repo, publisher, tx),
		queryService:   NewUserQueryService(repo),
	}
}

// CreateUser 创建用户（命令操作）
func (s *UserService) CreateUser(ctx context.Context, cmd CreateUserCommand) (*domain.User, error) {
	return s.commandService.CreateUser(ctx, cmd)
}

// UpdateUser 更新用户（命令操作）
func (s *UserService) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (*domain.User, error) {
	return s.commandService.UpdateUser(ctx, cmd)
}

// DeleteUser 删除用户（命令操作）
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.commandService.DeleteUser(ctx, id)
}

// GetUser 获取用户信息（查询操作）
func (s *UserService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.queryService.GetUserByID(ctx, id)
}

// FindByEmail 根据邮箱查找用户（查询操作）
func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.queryService.FindByEmail(ctx, email)
}

// ListUsers 列出用户（查询操作）
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]*domain.User, int64, error) {
	return s.queryService.ListUsers(ctx, page, pageSize)
}

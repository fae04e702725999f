package application

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/validation"
	"gorm.io/gorm"
)

// CreateUserCommand 创建用户命令，密码已由调用方哈希
type CreateUserCommand struct {
	Email        string `validate:"required,email,max=255"`
	PasswordHash string `validate:"required"`
	Name         string `validate:"required,max=100"`
	Phone        string `validate:"max=32"`
	Address      string `validate:"max=512"`
	Role         domain.Role
}

// UpdateUserCommand 更新用户命令，nil 字段保持不变
type UpdateUserCommand struct {
	ID      uint
	Email   *string `validate:"omitempty,email,max=255"`
	Name    *string `validate:"omitempty,min=1,max=100"`
	Phone   *string `validate:"omitempty,max=32"`
	Address *string `validate:"omitempty,max=512"`
	Role    *domain.Role
	Active  *bool
}

// TxManager 事务管理
type TxManager interface {
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// UserCommandService 用户命令服务
type UserCommandService struct {
	repo      domain.UserRepository
	publisher domain.EventPublisher
	tx        TxManager
}

// NewUserCommandService 创建新的用户命令服务
func NewUserCommandService(repo domain.UserRepository, publisher domain.EventPublisher, tx TxManager) *UserCommandService {
	return &UserCommandService{
		repo:      repo,
		publisher: publisher,
		tx:        tx,
	}
}

// CreateUser 创建用户，邮箱已存在（含已删除用户）时返回冲突
func (s *UserCommandService) CreateUser(ctx context.Context, cmd CreateUserCommand) (*domain.User, error) {
	cmd.Email = domain.NormalizeEmail(cmd.Email)
	if cmd.Role == "" {
		cmd.Role = domain.RoleClient
	}
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	if !cmd.Role.Valid() {
		return nil, errorx.Validation("unknown role %q", cmd.Role)
	}

	user := &domain.User{
		Email:        cmd.Email,
		PasswordHash: cmd.PasswordHash,
		Name:         cmd.Name,
		Phone:        cmd.Phone,
		Address:      cmd.Address,
		Role:         cmd.Role,
		Active:       true,
	}

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.ExistsByEmail(txCtx, user.Email)
		if err != nil {
			return err
		}
		if exists {
			return errorx.Conflict("email %s is already registered", user.Email)
		}
		if err := s.repo.Save(txCtx, user); err != nil {
			return mapDuplicate(err, user.Email)
		}
		return s.publisher.Publish(txCtx, domain.TopicUserCreated, user.Email, domain.UserCreatedEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "User created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// UpdateUser 更新用户
func (s *UserCommandService) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (*domain.User, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	if cmd.Role != nil && !cmd.Role.Valid() {
		return nil, errorx.Validation("unknown role %q", *cmd.Role)
	}

	var user *domain.User
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.repo.GetByID(txCtx, cmd.ID)
		if err != nil {
			return err
		}
		if user == nil {
			return errorx.NotFound("user %d not found", cmd.ID)
		}

		if cmd.Email != nil {
			email := domain.NormalizeEmail(*cmd.Email)
			if email != user.Email {
				exists, err := s.repo.ExistsByEmail(txCtx, email)
				if err != nil {
					return err
				}
				if exists {
					return errorx.Conflict("email %s is already registered", email)
				}
				user.Email = email
			}
		}
		if cmd.Name != nil {
			user.Name = *cmd.Name
		}
		if cmd.Phone != nil {
			user.Phone = *cmd.Phone
		}
		if cmd.Address != nil {
			user.Address = *cmd.Address
		}
		if cmd.Role != nil {
			user.Role = *cmd.Role
		}
		if cmd.Active != nil {
			user.Active = *cmd.Active
		}

		if err := s.repo.Save(txCtx, user); err != nil {
			return mapDuplicate(err, user.Email)
		}
		return s.publisher.Publish(txCtx, domain.TopicUserUpdated, user.Email, domain.UserUpdatedEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      string(user.Role),
			Active:    user.Active,
			UpdatedAt: user.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser 删除用户（软删除）
func (s *UserCommandService) DeleteUser(ctx context.Context, id uint) error {
	return s.tx.WithTx(ctx, func(txCtx context.Context) error {
		user, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return errorx.NotFound("user %d not found", id)
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicUserDeleted, user.Email, domain.UserDeletedEvent{
			UserID:    id,
			DeletedAt: time.Now(),
		})
	})
}

// mapDuplicate 并发注册时由唯一索引兜底
func mapDuplicate(err error, email string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errorx.Conflict("email %s is already registered", email)
	}
	return err
}

package domain

import (
	"context"
	"time"

	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
)

// Identity 已认证的调用方，由令牌解析得到
type Identity struct {
	UserID    uint
	Email     string
	Role      userdomain.Role
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin 是否管理员
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == userdomain.RoleAdmin
}

type identityKey struct{}

// WithIdentity 把调用方身份放入 context
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom 取出调用方身份，匿名调用返回 nil
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// RequireUser 要求已认证
func RequireUser(ctx context.Context) (*Identity, error) {
	id := IdentityFrom(ctx)
	if id == nil {
		return nil, errorx.Unauthenticated("authentication required")
	}
	return id, nil
}

// RequireRole 要求已认证且角色匹配
func RequireRole(ctx context.Context, role userdomain.Role) (*Identity, error) {
	id, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if id.Role != role {
		return nil, errorx.Forbidden("role %s required", role)
	}
	return id, nil
}

// RequireSelfOrAdmin 要求调用方为管理员或操作自己的资源
func RequireSelfOrAdmin(ctx context.Context, userID uint) (*Identity, error) {
	id, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() && id.UserID != userID {
		return nil, errorx.Forbidden("access to user %d denied", userID)
	}
	return id, nil
}

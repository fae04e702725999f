package graphql

import (
	"context"

	authapp "github.com/wyfcoding/storefront/internal/auth/application"
	authdomain "github.com/wyfcoding/storefront/internal/auth/domain"
	"github.com/wyfcoding/storefront/pkg/utils"
)

type registerInput struct {
	Email    string
	Password string
	Name     string
	Phone    *string
	Address  *string
}

// Register 注册新用户，角色固定为 CLIENT
func (r *Resolver) Register(ctx context.Context, args struct{ Input *registerInput }) (*AuthPayloadResolver, error) {
	res, err := r.auth.Register(ctx, authapp.RegisterCommand{
		Email:    args.Input.Email,
		Password: args.Input.Password,
		Name:     args.Input.Name,
		Phone:    utils.Deref(args.Input.Phone),
		Address:  utils.Deref(args.Input.Address),
	})
	if err != nil {
		return nil, err
	}
	return &AuthPayloadResolver{res: res}, nil
}

// Login 登录
func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*AuthPayloadResolver, error) {
	res, err := r.auth.Login(ctx, authapp.LoginCommand{Email: args.Email, Password: args.Password})
	if err != nil {
		return nil, err
	}
	return &AuthPayloadResolver{res: res}, nil
}

// Logout 注销当前令牌
func (r *Resolver) Logout(ctx context.Context) (bool, error) {
	id, err := authdomain.RequireUser(ctx)
	if err != nil {
		return false, err
	}
	if err := r.auth.Logout(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// Me 当前用户
func (r *Resolver) Me(ctx context.Context) (*UserResolver, error) {
	id, err := authdomain.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := r.auth.Me(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserResolver{u: user}, nil
}

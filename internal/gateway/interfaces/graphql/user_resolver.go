package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	authdomain "github.com/wyfcoding/storefront/internal/auth/domain"
	userapp "github.com/wyfcoding/storefront/internal/user/application"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
)

type updateUserInput struct {
	Email   *string
	Name    *string
	Phone   *string
	Address *string
	Role    *string
	Active  *bool
}

// Users 用户列表，仅管理员
func (r *Resolver) Users(ctx context.Context, args struct {
	Page     *int32
	PageSize *int32
}) ([]*UserResolver, error) {
	if _, err := authdomain.RequireRole(ctx, userdomain.RoleAdmin); err != nil {
		return nil, err
	}
	page, size := pageValues(args.Page, args.PageSize)
	users, _, err := r.users.ListUsers(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return usersOf(users), nil
}

// User 查询用户，管理员或本人
func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (*UserResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	if _, err := authdomain.RequireSelfOrAdmin(ctx, id); err != nil {
		return nil, err
	}
	user, err := r.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserResolver{u: user}, nil
}

// UpdateUser 更新用户；本人只能修改资料，角色与启用状态仅管理员可改
func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	ID    graphql.ID
	Input *updateUserInput
}) (*UserResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	caller, err := authdomain.RequireSelfOrAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	in := args.Input
	if !caller.IsAdmin() && (in.Role != nil || in.Active != nil) {
		return nil, errorx.Forbidden("only administrators can change role or active status")
	}

	cmd := userapp.UpdateUserCommand{
		ID:      id,
		Email:   in.Email,
		Name:    in.Name,
		Phone:   in.Phone,
		Address: in.Address,
		Active:  in.Active,
	}
	if in.Role != nil {
		role := userdomain.Role(*in.Role)
		cmd.Role = &role
	}

	user, err := r.users.UpdateUser(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return &UserResolver{u: user}, nil
}

// RemoveUser 删除用户，仅管理员且不能删除自己
func (r *Resolver) RemoveUser(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return false, err
	}
	caller, err := authdomain.RequireRole(ctx, userdomain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if caller.UserID == id {
		return false, errorx.Forbidden("administrators cannot remove themselves")
	}
	if err := r.users.DeleteUser(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	authdomain "github.com/wyfcoding/storefront/internal/auth/domain"
)

// Cart 当前用户的购物车
func (r *Resolver) Cart(ctx context.Context) (*CartResolver, error) {
	id, err := authdomain.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	cart, err := r.cart.GetCart(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return &CartResolver{cart: cart}, nil
}

// AddToCart 加入购物车，同一商品合并数量
func (r *Resolver) AddToCart(ctx context.Context, args struct {
	ProductID graphql.ID
	Quantity  int32
}) (*CartItemResolver, error) {
	id, err := authdomain.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	productID, err := parseID(args.ProductID)
	if err != nil {
		return nil, err
	}
	item, err := r.cart.AddItem(ctx, id.UserID, productID, int(args.Quantity))
	if err != nil {
		return nil, err
	}
	return &CartItemResolver{item: item}, nil
}

func (r *Resolver) UpdateCartItem(ctx context.Context, args struct {
	ID       graphql.ID
	Quantity int32
}) (*CartItemResolver, error) {
	id, err := authdomain.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	itemID, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	item, err := r.cart.UpdateItem(ctx, id.UserID, itemID, int(args.Quantity))
	if err != nil {
		return nil, err
	}
	return &CartItemResolver{item: item}, nil
}

func (r *Resolver) RemoveFromCart(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	id, err := authdomain.RequireUser(ctx)
	if err != nil {
		return false, err
	}
	itemID, err := parseID(args.ID)
	if err != nil {
		return false, err
	}
	if err := r.cart.RemoveItem(ctx, id.UserID, itemID); err != nil {
		return false, err
	}
	return true, nil
}

// ClearCart 清空购物车
func (r *Resolver) ClearCart(ctx context.Context) (bool, error) {
	id, err := authdomain.RequireUser(ctx)
	if err != nil {
		return false, err
	}
	if err := r.cart.ClearCart(ctx, id.UserID); err != nil {
		return false, err
	}
	return true, nil
}

package graphql

import (
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/shopspring/decimal"
	authapp "github.com/wyfcoding/storefront/internal/auth/application"
	cartdomain "github.com/wyfcoding/storefront/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	orderdomain "github.com/wyfcoding/storefront/internal/order/domain"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
)

func timeOf(t time.Time) graphql.Time { return graphql.Time{Time: t} }

// UserResolver 用户
type UserResolver struct{ u *userdomain.User }

func (r *UserResolver) ID() graphql.ID          { return toID(r.u.ID) }
func (r *UserResolver) Email() string           { return r.u.Email }
func (r *UserResolver) Name() string            { return r.u.Name }
func (r *UserResolver) Phone() *string          { return optional(r.u.Phone) }
func (r *UserResolver) Address() *string        { return optional(r.u.Address) }
func (r *UserResolver) Role() string            { return string(r.u.Role) }
func (r *UserResolver) Active() bool            { return r.u.Active }
func (r *UserResolver) CreatedAt() graphql.Time { return timeOf(r.u.CreatedAt) }
func (r *UserResolver) UpdatedAt() graphql.Time { return timeOf(r.u.UpdatedAt) }

func usersOf(users []*userdomain.User) []*UserResolver {
	out := make([]*UserResolver, len(users))
	for i, u := range users {
		out[i] = &UserResolver{u: u}
	}
	return out
}

// AuthPayloadResolver 登录/注册结果
type AuthPayloadResolver struct{ res *authapp.AuthResult }

func (r *AuthPayloadResolver) Token() string { return r.res.Token }
func (r *AuthPayloadResolver) ExpiresAt() graphql.Time {
	return timeOf(time.Unix(r.res.ExpiresAt, 0))
}
func (r *AuthPayloadResolver) User() *UserResolver { return &UserResolver{u: r.res.User} }

// CategoryResolver 分类
type CategoryResolver struct{ c *catalogdomain.Category }

func (r *CategoryResolver) ID() graphql.ID          { return toID(r.c.ID) }
func (r *CategoryResolver) Name() string            { return r.c.Name }
func (r *CategoryResolver) NameEn() *string         { return optional(r.c.NameEn) }
func (r *CategoryResolver) Description() *string    { return optional(r.c.Description) }
func (r *CategoryResolver) DescriptionEn() *string  { return optional(r.c.DescriptionEn) }
func (r *CategoryResolver) Image() *string          { return optional(r.c.Image) }
func (r *CategoryResolver) Active() bool            { return r.c.Active }
func (r *CategoryResolver) CreatedAt() graphql.Time { return timeOf(r.c.CreatedAt) }
func (r *CategoryResolver) UpdatedAt() graphql.Time { return timeOf(r.c.UpdatedAt) }

// ProductResolver 商品
type ProductResolver struct{ p *catalogdomain.Product }

func productOf(p *catalogdomain.Product) *ProductResolver {
	if p == nil {
		return nil
	}
	return &ProductResolver{p: p}
}

func (r *ProductResolver) ID() graphql.ID         { return toID(r.p.ID) }
func (r *ProductResolver) Name() string           { return r.p.Name }
func (r *ProductResolver) NameEn() *string        { return optional(r.p.NameEn) }
func (r *ProductResolver) Price() Decimal         { return NewDecimal(r.p.Price) }
func (r *ProductResolver) Description() *string   { return optional(r.p.Description) }
func (r *ProductResolver) DescriptionEn() *string { return optional(r.p.DescriptionEn) }
func (r *ProductResolver) Stock() int32           { return int32(r.p.Stock) }
func (r *ProductResolver) Featured() bool         { return r.p.Featured }
func (r *ProductResolver) Active() bool           { return r.p.Active }

func (r *ProductResolver) Images() []string {
	if r.p.Images == nil {
		return []string{}
	}
	return r.p.Images
}

func (r *ProductResolver) Category() *CategoryResolver {
	if r.p.Category == nil {
		return nil
	}
	return &CategoryResolver{c: r.p.Category}
}

func (r *ProductResolver) CreatedAt() graphql.Time { return timeOf(r.p.CreatedAt) }
func (r *ProductResolver) UpdatedAt() graphql.Time { return timeOf(r.p.UpdatedAt) }

func productsOf(products []*catalogdomain.Product) []*ProductResolver {
	out := make([]*ProductResolver, len(products))
	for i, p := range products {
		out[i] = &ProductResolver{p: p}
	}
	return out
}

// ProductPageResolver 商品分页结果
type ProductPageResolver struct {
	items    []*catalogdomain.Product
	total    int64
	page     int32
	pageSize int32
}

func (r *ProductPageResolver) Items() []*ProductResolver { return productsOf(r.items) }
func (r *ProductPageResolver) Total() int32              { return int32(r.total) }
func (r *ProductPageResolver) Page() int32               { return r.page }
func (r *ProductPageResolver) PageSize() int32           { return r.pageSize }

// CartItemResolver 购物车行
type CartItemResolver struct{ item *cartdomain.CartItem }

func (r *CartItemResolver) ID() graphql.ID            { return toID(r.item.ID) }
func (r *CartItemResolver) Quantity() int32           { return int32(r.item.Quantity) }
func (r *CartItemResolver) Product() *ProductResolver { return productOf(r.item.Product) }

func (r *CartItemResolver) Subtotal() Decimal {
	if r.item.Product == nil {
		return NewDecimal(decimal.Zero)
	}
	return NewDecimal(r.item.Product.Price.Mul(decimal.NewFromInt(int64(r.item.Quantity))))
}

// CartResolver 购物车
type CartResolver struct{ cart *cartdomain.Cart }

func (r *CartResolver) Items() []*CartItemResolver {
	out := make([]*CartItemResolver, len(r.cart.Items))
	for i, item := range r.cart.Items {
		out[i] = &CartItemResolver{item: item}
	}
	return out
}

func (r *CartResolver) Total() Decimal   { return NewDecimal(r.cart.Total()) }
func (r *CartResolver) ItemCount() int32 { return int32(r.cart.ItemCount()) }

// OrderItemResolver 订单行
type OrderItemResolver struct{ item *orderdomain.OrderItem }

func (r *OrderItemResolver) ID() graphql.ID            { return toID(r.item.ID) }
func (r *OrderItemResolver) Quantity() int32           { return int32(r.item.Quantity) }
func (r *OrderItemResolver) Price() Decimal            { return NewDecimal(r.item.Price) }
func (r *OrderItemResolver) Subtotal() Decimal         { return NewDecimal(r.item.Subtotal()) }
func (r *OrderItemResolver) Product() *ProductResolver { return productOf(r.item.Product) }

// OrderResolver 订单
type OrderResolver struct{ o *orderdomain.Order }

func (r *OrderResolver) ID() graphql.ID          { return toID(r.o.ID) }
func (r *OrderResolver) OrderNumber() string     { return r.o.OrderNumber }
func (r *OrderResolver) Total() Decimal          { return NewDecimal(r.o.Total) }
func (r *OrderResolver) Status() string          { return string(r.o.Status) }
func (r *OrderResolver) CustomerName() string    { return r.o.CustomerName }
func (r *OrderResolver) CustomerEmail() string   { return r.o.CustomerEmail }
func (r *OrderResolver) CustomerPhone() *string  { return optional(r.o.CustomerPhone) }
func (r *OrderResolver) ShippingAddress() string { return r.o.ShippingAddress }
func (r *OrderResolver) Notes() *string          { return optional(r.o.Notes) }
func (r *OrderResolver) CreatedAt() graphql.Time { return timeOf(r.o.CreatedAt) }
func (r *OrderResolver) UpdatedAt() graphql.Time { return timeOf(r.o.UpdatedAt) }

func (r *OrderResolver) UserID() *graphql.ID {
	if r.o.UserID == nil {
		return nil
	}
	id := toID(*r.o.UserID)
	return &id
}

func (r *OrderResolver) Items() []*OrderItemResolver {
	out := make([]*OrderItemResolver, len(r.o.Items))
	for i, item := range r.o.Items {
		out[i] = &OrderItemResolver{item: item}
	}
	return out
}

func ordersOf(orders []*orderdomain.Order) []*OrderResolver {
	out := make([]*OrderResolver, len(orders))
	for i, o := range orders {
		out[i] = &OrderResolver{o: o}
	}
	return out
}

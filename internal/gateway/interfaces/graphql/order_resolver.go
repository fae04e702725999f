package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	authdomain "github.com/wyfcoding/storefront/internal/auth/domain"
	orderapp "github.com/wyfcoding/storefront/internal/order/application"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/utils"
)

type orderItemInput struct {
	ProductID graphql.ID
	Quantity  int32
}

type createOrderInput struct {
	Items           []*orderItemInput
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   *string
	ShippingAddress string
	Notes           *string
}

// toCommand 把输入转换为订单行与联系人
func (in *createOrderInput) toCommand() ([]orderapp.LineItem, orderapp.Contact, error) {
	items := make([]orderapp.LineItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it == nil {
			return nil, orderapp.Contact{}, errorx.Validation("order item must not be null")
		}
		productID, err := parseID(it.ProductID)
		if err != nil {
			return nil, orderapp.Contact{}, err
		}
		items = append(items, orderapp.LineItem{ProductID: productID, Quantity: int(it.Quantity)})
	}
	contact := orderapp.Contact{
		Name:            in.CustomerName,
		Email:           in.CustomerEmail,
		Phone:           utils.Deref(in.CustomerPhone),
		ShippingAddress: in.ShippingAddress,
		Notes:           utils.Deref(in.Notes),
	}
	return items, contact, nil
}

func viewerOf(ctx context.Context) *orderapp.Viewer {
	id := authdomain.IdentityFrom(ctx)
	if id == nil {
		return nil
	}
	return &orderapp.Viewer{UserID: id.UserID, Admin: id.IsAdmin()}
}

// CreateOrder 已登录用户下单，成功后清空其购物车
func (r *Resolver) CreateOrder(ctx context.Context, args struct{ Input *createOrderInput }) (*OrderResolver, error) {
	id, err := authdomain.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	items, contact, err := args.Input.toCommand()
	if err != nil {
		return nil, err
	}
	order, err := r.orders.PlaceOrder(ctx, id.UserID, items, contact)
	if err != nil {
		return nil, err
	}
	return &OrderResolver{o: order}, nil
}

// CreateGuestOrder 访客下单，不关联用户
func (r *Resolver) CreateGuestOrder(ctx context.Context, args struct{ Input *createOrderInput }) (*OrderResolver, error) {
	items, contact, err := args.Input.toCommand()
	if err != nil {
		return nil, err
	}
	order, err := r.orders.PlaceGuestOrder(ctx, items, contact)
	if err != nil {
		return nil, err
	}
	return &OrderResolver{o: order}, nil
}

// UpdateOrderStatus 管理员修改订单状态
func (r *Resolver) UpdateOrderStatus(ctx context.Context, args struct {
	ID     graphql.ID
	Status string
}) (*OrderResolver, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	order, err := r.orders.UpdateOrderStatus(ctx, id, args.Status)
	if err != nil {
		return nil, err
	}
	return &OrderResolver{o: order}, nil
}

// Orders 管理员查看全部订单
func (r *Resolver) Orders(ctx context.Context, args struct {
	Status   *string
	Page     *int32
	PageSize *int32
}) ([]*OrderResolver, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	page, size := pageValues(args.Page, args.PageSize)
	orders, _, err := r.orders.ListOrders(ctx, args.Status, page, size)
	if err != nil {
		return nil, err
	}
	return ordersOf(orders), nil
}

// MyOrders 当前用户的订单
func (r *Resolver) MyOrders(ctx context.Context, args struct {
	Status   *string
	Page     *int32
	PageSize *int32
}) ([]*OrderResolver, error) {
	id, err := authdomain.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	page, size := pageValues(args.Page, args.PageSize)
	orders, _, err := r.orders.MyOrders(ctx, id.UserID, args.Status, page, size)
	if err != nil {
		return nil, err
	}
	return ordersOf(orders), nil
}

// Order 按 ID 查询订单，访客订单任何人可见
func (r *Resolver) Order(ctx context.Context, args struct{ ID graphql.ID }) (*OrderResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	order, err := r.orders.GetOrder(ctx, id, viewerOf(ctx))
	if err != nil {
		return nil, err
	}
	return &OrderResolver{o: order}, nil
}

// OrderByNumber 按订单号查询
func (r *Resolver) OrderByNumber(ctx context.Context, args struct{ OrderNumber string }) (*OrderResolver, error) {
	order, err := r.orders.GetOrderByNumber(ctx, args.OrderNumber, viewerOf(ctx))
	if err != nil {
		return nil, err
	}
	return &OrderResolver{o: order}, nil
}

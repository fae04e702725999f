// Package graphql 提供店铺的 GraphQL 接口，聚合各上下文服务并在边界处完成权限校验
package graphql

import (
	"context"
	_ "embed"
	"strconv"

	graphql "github.com/graph-gophers/graphql-go"
	authapp "github.com/wyfcoding/storefront/internal/auth/application"
	authdomain "github.com/wyfcoding/storefront/internal/auth/domain"
	cartdomain "github.com/wyfcoding/storefront/internal/cart/domain"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	orderapp "github.com/wyfcoding/storefront/internal/order/application"
	orderdomain "github.com/wyfcoding/storefront/internal/order/domain"
	userapp "github.com/wyfcoding/storefront/internal/user/application"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/utils"
)

//go:embed schema.graphql
var schemaSDL string

// AuthService 认证能力
type AuthService interface {
	Register(ctx context.Context, cmd authapp.RegisterCommand) (*authapp.AuthResult, error)
	Login(ctx context.Context, cmd authapp.LoginCommand) (*authapp.AuthResult, error)
	Logout(ctx context.Context, id *authdomain.Identity) error
	Me(ctx context.Context, id *authdomain.Identity) (*userdomain.User, error)
}

// UserService 用户管理能力
type UserService interface {
	UpdateUser(ctx context.Context, cmd userapp.UpdateUserCommand) (*userdomain.User, error)
	DeleteUser(ctx context.Context, id uint) error
	GetUser(ctx context.Context, id uint) (*userdomain.User, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]*userdomain.User, int64, error)
}

// CatalogService 商品目录能力
type CatalogService interface {
	CreateCategory(ctx context.Context, cmd catalogapp.CreateCategoryCommand) (*catalogdomain.Category, error)
	UpdateCategory(ctx context.Context, cmd catalogapp.UpdateCategoryCommand) (*catalogdomain.Category, error)
	RemoveCategory(ctx context.Context, id uint) error
	CreateProduct(ctx context.Context, cmd catalogapp.CreateProductCommand) (*catalogdomain.Product, error)
	UpdateProduct(ctx context.Context, cmd catalogapp.UpdateProductCommand) (*catalogdomain.Product, error)
	RemoveProduct(ctx context.Context, id uint) error
	AdjustStock(ctx context.Context, id uint, delta int) (*catalogdomain.Product, error)

	GetCategory(ctx context.Context, id uint) (*catalogdomain.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]*catalogdomain.Category, error)
	GetProduct(ctx context.Context, id uint) (*catalogdomain.Product, error)
	ListProducts(ctx context.Context, filter catalogdomain.ProductFilter, page, pageSize int) ([]*catalogdomain.Product, int64, error)
	FeaturedProducts(ctx context.Context, limit int) ([]*catalogdomain.Product, error)
}

// CartService 购物车能力
type CartService interface {
	GetCart(ctx context.Context, userID uint) (*cartdomain.Cart, error)
	AddItem(ctx context.Context, userID, productID uint, qty int) (*cartdomain.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID uint, qty int) (*cartdomain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID uint) error
	ClearCart(ctx context.Context, userID uint) error
}

// OrderService 订单能力
type OrderService interface {
	PlaceOrder(ctx context.Context, buyerID uint, items []orderapp.LineItem, contact orderapp.Contact) (*orderdomain.Order, error)
	PlaceGuestOrder(ctx context.Context, items []orderapp.LineItem, contact orderapp.Contact) (*orderdomain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status string) (*orderdomain.Order, error)
	ListOrders(ctx context.Context, status *string, page, pageSize int) ([]*orderdomain.Order, int64, error)
	MyOrders(ctx context.Context, userID uint, status *string, page, pageSize int) ([]*orderdomain.Order, int64, error)
	GetOrder(ctx context.Context, id uint, viewer *orderapp.Viewer) (*orderdomain.Order, error)
	GetOrderByNumber(ctx context.Context, number string, viewer *orderapp.Viewer) (*orderdomain.Order, error)
}

// Resolver 根解析器，Query 与 Mutation 字段均挂在其上
type Resolver struct {
	auth    AuthService
	users   UserService
	catalog CatalogService
	cart    CartService
	orders  OrderService
}

// NewResolver 创建根解析器
func NewResolver(auth AuthService, users UserService, catalog CatalogService, cart CartService, orders OrderService) *Resolver {
	return &Resolver{
		auth:    auth,
		users:   users,
		catalog: catalog,
		cart:    cart,
		orders:  orders,
	}
}

// NewSchema 解析内嵌 schema 并绑定解析器
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	reporter := panicReporter{}
	return graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(12),
		graphql.MaxParallelism(10),
		graphql.Logger(reporter),
		graphql.PanicHandler(reporter),
	)
}

func parseID(id graphql.ID) (uint, error) {
	n, err := strconv.ParseUint(string(id), 10, strconv.IntSize)
	if err != nil || n == 0 {
		return 0, errorx.Validation("invalid id %q", string(id))
	}
	return uint(n), nil
}

func parseOptionalID(id *graphql.ID) (*uint, error) {
	if id == nil {
		return nil, nil
	}
	n, err := parseID(*id)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func toID(id uint) graphql.ID {
	return graphql.ID(strconv.FormatUint(uint64(id), 10))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// pageValues 未传分页参数时由服务层取默认值
func pageValues(page, pageSize *int32) (int, int) {
	return int(utils.Deref(page)), int(utils.Deref(pageSize))
}

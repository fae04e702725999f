// Package application 组装各上下文的应用服务，供网关接口层使用
package application

import (
	"time"

	authapp "github.com/wyfcoding/storefront/internal/auth/application"
	authdomain "github.com/wyfcoding/storefront/internal/auth/domain"
	authredis "github.com/wyfcoding/storefront/internal/auth/infrastructure/persistence/redis"
	"github.com/wyfcoding/storefront/internal/auth/infrastructure/security"
	cartapp "github.com/wyfcoding/storefront/internal/cart/application"
	cartdomain "github.com/wyfcoding/storefront/internal/cart/domain"
	cartmysql "github.com/wyfcoding/storefront/internal/cart/infrastructure/persistence/mysql"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	catalogmessaging "github.com/wyfcoding/storefront/internal/catalog/infrastructure/messaging"
	catalogmysql "github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/mysql"
	catalogredis "github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/redis"
	orderapp "github.com/wyfcoding/storefront/internal/order/application"
	orderdomain "github.com/wyfcoding/storefront/internal/order/domain"
	ordermessaging "github.com/wyfcoding/storefront/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/storefront/internal/order/infrastructure/persistence/mysql"
	userapp "github.com/wyfcoding/storefront/internal/user/application"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	usermysql "github.com/wyfcoding/storefront/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/outbox"
)

// Options 组装参数
type Options struct {
	DB *db.DB
	// Cache 为 nil 时关闭商品缓存与令牌吊销
	Cache      *cache.RedisCache
	Auth       config.AuthConfig
	ProductTTL time.Duration
	// Isolation 下单事务隔离级别
	Isolation string
	Metrics   *metrics.Metrics
}

// Services 网关依赖的全部应用服务
type Services struct {
	Users   *userapp.UserService
	Auth    *authapp.AuthService
	Catalog *catalogapp.CatalogService
	Cart    *cartapp.CartApplicationService
	Orders  *orderapp.OrderService
	Outbox  *outbox.Manager
}

// Models 需要迁移的全部表
func Models() []any {
	return []any{
		&userdomain.User{},
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&cartdomain.CartItem{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&orderdomain.OrderSequence{},
		&outbox.Message{},
	}
}

// NewServices 按依赖顺序创建各上下文服务
func NewServices(opts Options) *Services {
	gdb := opts.DB.DB
	manager := outbox.NewManager(gdb)

	users := userapp.NewUserService(usermysql.NewUserRepository(gdb), manager, opts.DB)

	var revocations authdomain.RevocationRepository
	var productCache catalogdomain.ProductCache
	if opts.Cache != nil {
		revocations = authredis.NewRevocationRedisRepository(opts.Cache.GetClient())
		productCache = catalogredis.NewProductCache(opts.Cache, opts.ProductTTL)
	}

	auth := authapp.NewAuthService(
		users,
		security.NewBcryptHasher(opts.Auth.BcryptCost),
		security.NewJWTManager(opts.Auth.JWTSecret, opts.Auth.Issuer, opts.Auth.TokenDuration()),
		revocations,
	)

	products := catalogmysql.NewProductRepository(gdb)
	catalog := catalogapp.NewCatalogService(
		catalogmysql.NewCategoryRepository(gdb),
		products,
		productCache,
		catalogmessaging.NewOutboxPublisher(manager),
		opts.DB,
		opts.Metrics,
	)

	carts := cartmysql.NewCartRepository(gdb)
	cart := cartapp.NewCartApplicationService(carts, products, manager, opts.DB, opts.Metrics)

	orders := orderapp.NewOrderService(orderapp.Deps{
		Orders:    ordermysql.NewOrderRepository(gdb),
		Sequences: ordermysql.NewSequenceRepository(gdb),
		Products:  products,
		Carts:     carts,
		Cache:     catalog,
		Publisher: ordermessaging.NewOutboxEventPublisher(manager),
		Tx:        opts.DB,
		Isolation: opts.Isolation,
		Metrics:   opts.Metrics,
	})

	return &Services{
		Users:   users,
		Auth:    auth,
		Catalog: catalog,
		Cart:    cart,
		Orders:  orders,
		Outbox:  manager,
	}
}

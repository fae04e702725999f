package domain

import (
	"context"

	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
)

// OrderRepository 订单仓储接口，未找到时返回 (nil, nil)
type OrderRepository interface {
	// Create 写入订单及订单行
	Create(ctx context.Context, order *Order) error
	// GetByID 加载订单，订单行预加载商品及分类
	GetByID(ctx context.Context, id uint) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	// List 按创建时间倒序
	List(ctx context.Context, filter OrderFilter, offset, limit int) ([]*Order, int64, error)
	UpdateStatus(ctx context.Context, id uint, status OrderStatus) error
}

// SequenceRepository 计数器仓储，必须在事务中调用
type SequenceRepository interface {
	// Next 自增并返回新值，行锁持有至事务结束
	Next(ctx context.Context, name string) (int64, error)
}

// ProductStore 下单所需的库存操作
type ProductStore interface {
	LockByIDs(ctx context.Context, ids []uint) ([]*catalogdomain.Product, error)
	DecrementStock(ctx context.Context, id uint, quantity int) (bool, error)
}

// CartCleaner 下单后清空购物车
type CartCleaner interface {
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

// ProductCacheInvalidator 提交后失效商品缓存
type ProductCacheInvalidator interface {
	InvalidateProducts(ctx context.Context, ids ...uint)
}

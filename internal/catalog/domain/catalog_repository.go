package domain

import "context"

// CategoryRepository 分类仓储，未找到时返回 (nil, nil)
type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id uint) (*Category, error)
	List(ctx context.Context, activeOnly bool) ([]*Category, error)
	Delete(ctx context.Context, id uint) error
	CountProducts(ctx context.Context, categoryID uint) (int64, error)
	// ProductIDs 返回分类下全部商品 id
	ProductIDs(ctx context.Context, categoryID uint) ([]uint, error)
}

// ProductRepository 商品仓储，未找到时返回 (nil, nil)
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	// GetByID 预加载分类
	GetByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, filter ProductFilter, offset, limit int) ([]*Product, int64, error)
	Delete(ctx context.Context, id uint) error

	// LockByIDs 在当前事务中对商品行加写锁，按 id 升序加锁，不存在的 id 不返回
	LockByIDs(ctx context.Context, ids []uint) ([]*Product, error)
	// DecrementStock 仅当库存充足时扣减，返回是否扣减成功
	DecrementStock(ctx context.Context, id uint, quantity int) (bool, error)
	// SetStock 直接写入库存
	SetStock(ctx context.Context, id uint, stock int) error
}

// ProductCache 商品读缓存
type ProductCache interface {
	Get(ctx context.Context, id uint) (*Product, bool, error)
	Set(ctx context.Context, product *Product) error
	Invalidate(ctx context.Context, ids ...uint) error
}

// EventPublisher 事件发布者；ctx 中存在事务时随事务写入
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}

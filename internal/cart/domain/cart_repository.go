package domain

import "context"

// CartRepository 购物车仓储，未找到时返回 (nil, nil)
type CartRepository interface {
	GetItem(ctx context.Context, id uint) (*CartItem, error)
	// FindItem 在当前事务中对命中的行加写锁
	FindItem(ctx context.Context, userID, productID uint) (*CartItem, error)
	Save(ctx context.Context, item *CartItem) error
	// IncrementQuantity 原子累加数量，累加后超过 limit 时不修改并返回 false
	IncrementQuantity(ctx context.Context, id uint, delta, limit int) (bool, error)
	DeleteItem(ctx context.Context, id uint) error
	// ListByUser 预加载商品及其分类
	ListByUser(ctx context.Context, userID uint) ([]*CartItem, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

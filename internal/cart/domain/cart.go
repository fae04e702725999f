package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
)

// CartItem 购物车行，(user_id, product_id) 唯一
type CartItem struct {
	ID        uint                   `gorm:"primaryKey"`
	UserID    uint                   `gorm:"column:user_id;not null;uniqueIndex:uk_cart_items_user_product"`
	ProductID uint                   `gorm:"column:product_id;not null;uniqueIndex:uk_cart_items_user_product"`
	Quantity  int                    `gorm:"column:quantity;not null;check:chk_cart_items_quantity,quantity > 0"`
	Product   *catalogdomain.Product `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartItem) TableName() string { return "cart_items" }

// Cart 用户购物车视图
type Cart struct {
	UserID uint
	Items  []*CartItem
}

// Total 按当前价格计算的总金额
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount 商品件数之和
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// ProductReader 读取商品当前状态
type ProductReader interface {
	GetByID(ctx context.Context, id uint) (*catalogdomain.Product, error)
}

// EventPublisher 事件发布者；ctx 中存在事务时随事务写入
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}

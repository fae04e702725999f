// Package domain 包含订单上下文的领域模型
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Valid 是否为已定义的状态
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ParseOrderStatus 解析状态字符串，大小写不敏感
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return status, nil
}

// Order 订单实体
// 访客订单的 UserID 为空
type Order struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// 订单号，形如 ORD-001
	OrderNumber string `gorm:"column:order_number;type:varchar(32);uniqueIndex;not null" json:"order_number"`
	// 下单时按快照价格计算的总额
	Total  decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null" json:"total"`
	Status OrderStatus     `gorm:"column:status;type:varchar(16);index;not null" json:"status"`
	// 收货联系人
	CustomerName    string `gorm:"column:customer_name;type:varchar(100);not null" json:"customer_name"`
	CustomerEmail   string `gorm:"column:customer_email;type:varchar(255);not null" json:"customer_email"`
	CustomerPhone   string `gorm:"column:customer_phone;type:varchar(32)" json:"customer_phone,omitempty"`
	ShippingAddress string `gorm:"column:shipping_address;type:varchar(512);not null" json:"shipping_address"`
	Notes           string `gorm:"column:notes;type:text" json:"notes,omitempty"`
	// 下单用户
	UserID    *uint        `gorm:"column:user_id;index" json:"user_id,omitempty"`
	Items     []*OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string { return "orders" }

// IsGuest 是否为访客订单
func (o *Order) IsGuest() bool { return o.UserID == nil }

// OwnedBy 是否属于指定用户
func (o *Order) OwnedBy(userID uint) bool {
	return o.UserID != nil && *o.UserID == userID
}

// AddItem 追加订单行并累加总额，价格为下单时的商品价格快照
func (o *Order) AddItem(productID uint, quantity int, price decimal.Decimal) {
	o.Items = append(o.Items, &OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	})
	o.Total = o.Total.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
}

// OrderItem 订单行，创建后不再修改
type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint            `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID uint            `gorm:"column:product_id;index;not null" json:"product_id"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null" json:"price"`

	Product *catalogdomain.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName 指定表名
func (OrderItem) TableName() string { return "order_items" }

// Subtotal 行小计
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderSequenceName 订单号计数器名称
const OrderSequenceName = "order"

// OrderSequence 订单号计数器，一行一个序列
type OrderSequence struct {
	Name    string `gorm:"column:name;type:varchar(32);primaryKey"`
	Current int64  `gorm:"column:current_value;not null;default:0"`
}

// TableName 指定表名
func (OrderSequence) TableName() string { return "order_sequences" }

// FormatOrderNumber 生成订单号，至少三位数字
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("ORD-%03d", n)
}

// OrderFilter 订单查询条件
type OrderFilter struct {
	UserID *uint
	Status *OrderStatus
}

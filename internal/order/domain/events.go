package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
)

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	OrderID     uint               `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	UserID      *uint              `json:"user_id,omitempty"`
	Total       decimal.Decimal    `json:"total"`
	Items       []OrderCreatedLine `json:"items"`
	OccurredOn  time.Time          `json:"occurred_on"`
}

// OrderCreatedLine 订单创建事件中的订单行
type OrderCreatedLine struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderID     uint        `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
	OccurredOn  time.Time   `json:"occurred_on"`
}

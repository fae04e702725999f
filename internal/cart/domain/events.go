package domain

import "time"

const (
	TopicCartItemAdded   = "cart.item.added"
	TopicCartItemUpdated = "cart.item.updated"
	TopicCartItemRemoved = "cart.item.removed"
	TopicCartCleared     = "cart.cleared"
)

// CartItemAddedEvent 购物车添加商品事件
type CartItemAddedEvent struct {
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Total     int       `json:"total_quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// CartItemUpdatedEvent 购物车数量修改事件
type CartItemUpdatedEvent struct {
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// CartItemRemovedEvent 购物车移除商品事件
type CartItemRemovedEvent struct {
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CartClearedEvent 购物车清空事件
type CartClearedEvent struct {
	UserID    uint      `json:"user_id"`
	Removed   int64     `json:"removed"`
	Timestamp time.Time `json:"timestamp"`
}

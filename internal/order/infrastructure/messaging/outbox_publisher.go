package messaging

import (
	"context"

	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/outbox"
)

// OutboxEventPublisher 基于 Outbox 模式的订单事件发布者
type OutboxEventPublisher struct {
	manager *outbox.Manager
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(manager *outbox.Manager) domain.EventPublisher {
	return &OutboxEventPublisher{manager: manager}
}

// Publish 写入发件箱，与订单数据同一事务提交
func (p *OutboxEventPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.manager.Publish(ctx, topic, key, event)
}

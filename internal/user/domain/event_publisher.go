package domain

import "context"

// EventPublisher 用户事件发布者接口；ctx 中存在事务时随事务写入
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}

// Package outbox 实现事务性发件箱：事件与业务数据在同一事务落库，再由 Relay 投递到消息队列
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wyfcoding/storefront/pkg/contextx"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/mq"
	"gorm.io/gorm"
)

// Status 消息投递状态
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// Message 发件箱表
type Message struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	Topic     string     `gorm:"column:topic;type:varchar(128);not null"`
	Key       string     `gorm:"column:msg_key;type:varchar(128)"`
	Payload   string     `gorm:"column:payload;type:text;not null"`
	Status    Status     `gorm:"column:status;type:varchar(16);index;not null"`
	Attempts  int        `gorm:"column:attempts;not null;default:0"`
	LastError string     `gorm:"column:last_error;type:varchar(512)"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	SentAt    *time.Time `gorm:"column:sent_at"`
}

// TableName 指定表名
func (Message) TableName() string { return "outbox_messages" }

// Manager 负责写入发件箱
type Manager struct {
	db *gorm.DB
}

// NewManager 创建发件箱管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// DB 返回底层连接
func (m *Manager) DB() *gorm.DB { return m.db }

// Publish 写入一条事件；ctx 中存在事务时随事务提交
func (m *Manager) Publish(ctx context.Context, topic, key string, event any) error {
	return m.PublishInTx(ctx, contextx.DB(ctx, m.db), topic, key, event)
}

// PublishInTx 在给定事务中写入一条事件
func (m *Manager) PublishInTx(ctx context.Context, tx *gorm.DB, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox event: %w", err)
	}
	msg := &Message{
		Topic:   topic,
		Key:     key,
		Payload: string(payload),
		Status:  StatusPending,
	}
	if err := tx.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to write outbox message: %w", err)
	}
	return nil
}

// Sender 消息发送方
type Sender interface {
	Send(ctx context.Context, messages ...mq.Message) error
}

// RelayConfig 投递配置
type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// Relay 轮询发件箱并投递
type Relay struct {
	db     *gorm.DB
	sender Sender
	cfg    RelayConfig
}

// NewRelay 创建投递器
func NewRelay(manager *Manager, sender Sender, cfg RelayConfig) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &Relay{db: manager.DB(), sender: sender, cfg: cfg}
}

// Run 周期性投递，直到 ctx 取消
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	logger.Info(ctx, "Outbox relay started", "interval", r.cfg.PollInterval)
	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Error(ctx, "Outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce 投递一批待发送消息，返回成功条数
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var pending []Message
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("id asc").
		Limit(r.cfg.BatchSize).
		Find(&pending).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load outbox messages: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	batch := make([]mq.Message, len(pending))
	ids := make([]uint, len(pending))
	for i, m := range pending {
		batch[i] = mq.Message{Topic: m.Topic, Key: m.Key, Value: []byte(m.Payload)}
		ids[i] = m.ID
	}

	if sendErr := r.sender.Send(ctx, batch...); sendErr != nil {
		if err := r.markFailedAttempt(ctx, ids, sendErr); err != nil {
			return 0, err
		}
		return 0, sendErr
	}

	now := time.Now()
	err = r.db.WithContext(ctx).Model(&Message{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": StatusSent, "sent_at": now}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to mark outbox messages sent: %w", err)
	}
	return len(ids), nil
}

func (r *Relay) markFailedAttempt(ctx context.Context, ids []uint, cause error) error {
	reason := cause.Error()
	if len(reason) > 512 {
		reason = reason[:512]
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Message{}).Where("id IN ?", ids).
			Updates(map[string]any{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": reason,
			}).Error
		if err != nil {
			return err
		}
		return tx.Model(&Message{}).
			Where("id IN ? AND attempts >= ?", ids, r.cfg.MaxAttempts).
			Update("status", StatusFailed).Error
	})
}

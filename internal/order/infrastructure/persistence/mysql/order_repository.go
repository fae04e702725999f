// Package mysql 提供了订单仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/contextx"
	"github.com/wyfcoding/storefront/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderRepositoryImpl 是 domain.OrderRepository 接口的 GORM 实现。
type orderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepositoryImpl{db: db}
}

func unscoped(db *gorm.DB) *gorm.DB { return db.Unscoped() }

// hydrated 预加载订单行、商品及分类；订单引用的商品即使已删除也要展示
func (r *orderRepositoryImpl) hydrated(ctx context.Context) *gorm.DB {
	return contextx.DB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id asc") }).
		Preload("Items.Product", unscoped).
		Preload("Items.Product.Category", unscoped)
}

// Create 实现 domain.OrderRepository.Create
func (r *orderRepositoryImpl) Create(ctx context.Context, order *domain.Order) error {
	if err := contextx.DB(ctx, r.db).Create(order).Error; err != nil {
		logger.Error(ctx, "order_repository.create failed", "order_number", order.OrderNumber, "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID 实现 domain.OrderRepository.GetByID
func (r *orderRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.hydrated(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Error(ctx, "order_repository.get failed", "order_id", id, "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// GetByNumber 实现 domain.OrderRepository.GetByNumber
func (r *orderRepositoryImpl) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var order domain.Order
	err := r.hydrated(ctx).Where("order_number = ?", number).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Error(ctx, "order_repository.get_by_number failed", "order_number", number, "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// List 实现 domain.OrderRepository.List
func (r *orderRepositoryImpl) List(ctx context.Context, filter domain.OrderFilter, offset, limit int) ([]*domain.Order, int64, error) {
	query := contextx.DB(ctx, r.db).Model(&domain.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []*domain.Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id asc") }).
		Preload("Items.Product", unscoped).
		Preload("Items.Product.Category", unscoped).
		Order("created_at desc").Order("id desc").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		logger.Error(ctx, "order_repository.list failed", "error", err)
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus 实现 domain.OrderRepository.UpdateStatus
func (r *orderRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status domain.OrderStatus) error {
	err := contextx.DB(ctx, r.db).Model(&domain.Order{}).Where("id = ?", id).Update("status", string(status)).Error
	if err != nil {
		logger.Error(ctx, "order_repository.update_status failed", "order_id", id, "error", err)
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository 创建计数器仓储
func NewSequenceRepository(db *gorm.DB) domain.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next 首次使用时建行，随后原子自增；UPDATE 取得的行锁使并发事务按提交顺序取号
func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	db := contextx.DB(ctx, r.db)

	seed := &domain.OrderSequence{Name: name}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return 0, fmt.Errorf("failed to seed sequence %s: %w", name, err)
	}

	res := db.Model(&domain.OrderSequence{}).
		Where("name = ?", name).
		Update("current_value", gorm.Expr("current_value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, res.Error)
	}

	var seq domain.OrderSequence
	if err := db.Where("name = ?", name).First(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", name, err)
	}
	return seq.Current, nil
}

package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct{ db *gorm.DB }

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) domain.CartRepository {
	return &cartRepository{db: db}
}

func unscoped(db *gorm.DB) *gorm.DB { return db.Unscoped() }

func (r *cartRepository) withProduct(ctx context.Context) *gorm.DB {
	// 已下架删除的商品仍需展示
	return contextx.DB(ctx, r.db).
		Preload("Product", unscoped).
		Preload("Product.Category", unscoped)
}

func (r *cartRepository) GetItem(ctx context.Context, id uint) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.withProduct(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart item %d: %w", id, err)
	}
	return &item, nil
}

func (r *cartRepository) FindItem(ctx context.Context, userID, productID uint) (*domain.CartItem, error) {
	var item domain.CartItem
	err := contextx.DB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

func (r *cartRepository) Save(ctx context.Context, item *domain.CartItem) error {
	if err := contextx.DB(ctx, r.db).Omit(clause.Associations).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) IncrementQuantity(ctx context.Context, id uint, delta, limit int) (bool, error) {
	res := contextx.DB(ctx, r.db).Model(&domain.CartItem{}).
		Where("id = ? AND quantity + ? <= ?", id, delta, limit).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return false, fmt.Errorf("failed to increment cart item %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, id uint) error {
	if err := contextx.DB(ctx, r.db).Delete(&domain.CartItem{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete cart item %d: %w", id, err)
	}
	return nil
}

func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.CartItem, error) {
	var items []*domain.CartItem
	err := r.withProduct(ctx).Where("user_id = ?", userID).Order("id asc").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart of user %d: %w", userID, err)
	}
	return items, nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	res := contextx.DB(ctx, r.db).Where("user_id = ?", userID).Delete(&domain.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart of user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

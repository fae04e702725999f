package mysql

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type categoryRepository struct{ db *gorm.DB }

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) domain.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Save(ctx context.Context, category *domain.Category) error {
	if err := contextx.DB(ctx, r.db).Save(category).Error; err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*domain.Category, error) {
	var c domain.Category
	err := contextx.DB(ctx, r.db).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	var categories []*domain.Category
	q := contextx.DB(ctx, r.db).Order("id asc")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	if err := contextx.DB(ctx, r.db).Delete(&domain.Category{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return nil
}

func (r *categoryRepository) CountProducts(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := contextx.DB(ctx, r.db).Model(&domain.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count products of category %d: %w", categoryID, err)
	}
	return count, nil
}

func (r *categoryRepository) ProductIDs(ctx context.Context, categoryID uint) ([]uint, error) {
	var ids []uint
	err := contextx.DB(ctx, r.db).Model(&domain.Product{}).Where("category_id = ?", categoryID).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products of category %d: %w", categoryID, err)
	}
	return ids, nil
}

type productRepository struct{ db *gorm.DB }

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	var err error
	if product.ID == 0 {
		err = contextx.DB(ctx, r.db).Omit(clause.Associations).Create(product).Error
	} else {
		// 库存只经由 DecrementStock/SetStock 修改
		err = contextx.DB(ctx, r.db).Omit(clause.Associations, "stock").Save(product).Error
	}
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	err := contextx.DB(ctx, r.db).Preload("Category").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, offset, limit int) ([]*domain.Product, int64, error) {
	var products []*domain.Product
	var total int64

	q := contextx.DB(ctx, r.db).Model(&domain.Product{})
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR name_en LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	err := q.Preload("Category").Order("id asc").Offset(offset).Limit(limit).Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	if err := contextx.DB(ctx, r.db).Delete(&domain.Product{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

func (r *productRepository) LockByIDs(ctx context.Context, ids []uint) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var products []*domain.Product
	err := contextx.DB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	return products, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id uint, quantity int) (bool, error) {
	res := contextx.DB(ctx, r.db).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement stock of product %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepository) SetStock(ctx context.Context, id uint, stock int) error {
	err := contextx.DB(ctx, r.db).Model(&domain.Product{}).Where("id = ?", id).Update("stock", stock).Error
	if err != nil {
		return fmt.Errorf("failed to set stock of product %d: %w", id, err)
	}
	return nil
}

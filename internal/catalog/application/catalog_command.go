package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/validation"
)

// CreateCategoryCommand 创建分类命令
type CreateCategoryCommand struct {
	Name          string `validate:"required,max=100"`
	NameEn        string `validate:"max=100"`
	Description   string
	DescriptionEn string
	Image         string `validate:"max=512"`
	Active        *bool
}

// UpdateCategoryCommand 更新分类命令，nil 字段保持不变
type UpdateCategoryCommand struct {
	ID            uint
	Name          *string `validate:"omitempty,min=1,max=100"`
	NameEn        *string `validate:"omitempty,max=100"`
	Description   *string
	DescriptionEn *string
	Image         *string `validate:"omitempty,max=512"`
	Active        *bool
}

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Name          string `validate:"required,max=255"`
	NameEn        string `validate:"max=255"`
	Description   string
	DescriptionEn string
	Price         decimal.Decimal
	Images        []string
	Stock         int `validate:"gte=0"`
	Featured      bool
	Active        *bool
	CategoryID    uint `validate:"required"`
}

// UpdateProductCommand 更新商品命令，库存只能通过 AdjustStock 修改
type UpdateProductCommand struct {
	ID            uint
	Name          *string `validate:"omitempty,min=1,max=255"`
	NameEn        *string `validate:"omitempty,max=255"`
	Description   *string
	DescriptionEn *string
	Price         *decimal.Decimal
	Images        []string
	Featured      *bool
	Active        *bool
	CategoryID    *uint
}

// TxManager 事务管理
type TxManager interface {
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// CatalogCommandService 商品目录命令服务
type CatalogCommandService struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	cache      domain.ProductCache
	publisher  domain.EventPublisher
	tx         TxManager
}

// NewCatalogCommandService 创建商品目录命令服务实例，cache 可为 nil
func NewCatalogCommandService(
	categories domain.CategoryRepository,
	products domain.ProductRepository,
	cache domain.ProductCache,
	publisher domain.EventPublisher,
	tx TxManager,
) *CatalogCommandService {
	return &CatalogCommandService{
		categories: categories,
		products:   products,
		cache:      cache,
		publisher:  publisher,
		tx:         tx,
	}
}

// CreateCategory 处理创建分类
func (s *CatalogCommandService) CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (*domain.Category, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	category := &domain.Category{
		Name:          cmd.Name,
		NameEn:        cmd.NameEn,
		Description:   cmd.Description,
		DescriptionEn: cmd.DescriptionEn,
		Image:         cmd.Image,
		Active:        cmd.Active == nil || *cmd.Active,
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory 处理更新分类
func (s *CatalogCommandService) UpdateCategory(ctx context.Context, cmd UpdateCategoryCommand) (*domain.Category, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errorx.NotFound("category %d not found", cmd.ID)
	}

	if cmd.Name != nil {
		category.Name = *cmd.Name
	}
	if cmd.NameEn != nil {
		category.NameEn = *cmd.NameEn
	}
	if cmd.Description != nil {
		category.Description = *cmd.Description
	}
	if cmd.DescriptionEn != nil {
		category.DescriptionEn = *cmd.DescriptionEn
	}
	if cmd.Image != nil {
		category.Image = *cmd.Image
	}
	if cmd.Active != nil {
		category.Active = *cmd.Active
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	// 缓存的商品携带分类快照
	ids, err := s.categories.ProductIDs(ctx, category.ID)
	if err != nil {
		logger.Warn(ctx, "Failed to list products of category", "category_id", category.ID, "error", err)
	}
	s.InvalidateProducts(ctx, ids...)
	return category, nil
}

// RemoveCategory 删除分类，仍有商品引用时拒绝
func (s *CatalogCommandService) RemoveCategory(ctx context.Context, id uint) error {
	return s.tx.WithTx(ctx, func(txCtx context.Context) error {
		category, err := s.categories.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if category == nil {
			return errorx.NotFound("category %d not found", id)
		}
		n, err := s.categories.CountProducts(txCtx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return errorx.Conflict("category %d still has %d products", id, n)
		}
		return s.categories.Delete(txCtx, id)
	})
}

// CreateProduct 处理创建商品
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	if cmd.Price.IsNegative() {
		return nil, errorx.Validation("price must not be negative")
	}

	product := &domain.Product{
		Name:          cmd.Name,
		NameEn:        cmd.NameEn,
		Description:   cmd.Description,
		DescriptionEn: cmd.DescriptionEn,
		Price:         cmd.Price.Round(2),
		Images:        cmd.Images,
		Stock:         cmd.Stock,
		Featured:      cmd.Featured,
		Active:        cmd.Active == nil || *cmd.Active,
		CategoryID:    cmd.CategoryID,
	}

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.requireCategory(txCtx, cmd.CategoryID); err != nil {
			return err
		}
		if err := s.products.Save(txCtx, product); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicProductCreated, keyOf(product.ID), domain.ProductCreatedEvent{
			ProductID:  product.ID,
			Name:       product.Name,
			Price:      product.Price,
			Stock:      product.Stock,
			CategoryID: product.CategoryID,
			Timestamp:  time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Product created", "product_id", product.ID)
	return s.products.GetByID(ctx, product.ID)
}

// UpdateProduct 处理更新商品
func (s *CatalogCommandService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	if cmd.Price != nil && cmd.Price.IsNegative() {
		return nil, errorx.Validation("price must not be negative")
	}

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.products.GetByID(txCtx, cmd.ID)
		if err != nil {
			return err
		}
		if product == nil {
			return errorx.NotFound("product %d not found", cmd.ID)
		}

		if cmd.Name != nil {
			product.Name = *cmd.Name
		}
		if cmd.NameEn != nil {
			product.NameEn = *cmd.NameEn
		}
		if cmd.Description != nil {
			product.Description = *cmd.Description
		}
		if cmd.DescriptionEn != nil {
			product.DescriptionEn = *cmd.DescriptionEn
		}
		if cmd.Price != nil {
			product.Price = cmd.Price.Round(2)
		}
		if cmd.Images != nil {
			product.Images = cmd.Images
		}
		if cmd.Featured != nil {
			product.Featured = *cmd.Featured
		}
		if cmd.Active != nil {
			product.Active = *cmd.Active
		}
		if cmd.CategoryID != nil && *cmd.CategoryID != product.CategoryID {
			if err := s.requireCategory(txCtx, *cmd.CategoryID); err != nil {
				return err
			}
			product.CategoryID = *cmd.CategoryID
			product.Category = nil
		}

		if err := s.products.Save(txCtx, product); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicProductUpdated, keyOf(product.ID), domain.ProductUpdatedEvent{
			ProductID:  product.ID,
			Name:       product.Name,
			Price:      product.Price,
			Active:     product.Active,
			CategoryID: product.CategoryID,
			Timestamp:  time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateProducts(ctx, cmd.ID)
	return s.products.GetByID(ctx, cmd.ID)
}

// RemoveProduct 删除商品（软删除），历史订单仍可引用
func (s *CatalogCommandService) RemoveProduct(ctx context.Context, id uint) error {
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.products.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return errorx.NotFound("product %d not found", id)
		}
		if err := s.products.Delete(txCtx, id); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicProductDeleted, keyOf(id), domain.ProductDeletedEvent{
			ProductID: id,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return err
	}
	s.InvalidateProducts(ctx, id)
	return nil
}

// AdjustStock 按有符号增量调整库存，结果为负时拒绝
func (s *CatalogCommandService) AdjustStock(ctx context.Context, id uint, delta int) (*domain.Product, error) {
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		locked, err := s.products.LockByIDs(txCtx, []uint{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return errorx.NotFound("product %d not found", id)
		}

		product := locked[0]
		newStock := product.Stock + delta
		if newStock < 0 {
			return errorx.Validation("stock of product %d cannot go below zero (current %d, delta %d)", id, product.Stock, delta)
		}
		if err := s.products.SetStock(txCtx, id, newStock); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicProductStockChanged, keyOf(id), domain.ProductStockChangedEvent{
			ProductID: id,
			OldStock:  product.Stock,
			NewStock:  newStock,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateProducts(ctx, id)
	logger.Info(ctx, "Product stock adjusted", "product_id", id, "delta", delta)
	return s.products.GetByID(ctx, id)
}

// InvalidateProducts 使商品缓存失效，失败只记录日志
func (s *CatalogCommandService) InvalidateProducts(ctx context.Context, ids ...uint) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		logger.Warn(ctx, "Product cache invalidation failed", "ids", ids, "error", err)
	}
}

func (s *CatalogCommandService) requireCategory(ctx context.Context, id uint) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return errorx.NotFound("category %d not found", id)
	}
	return nil
}

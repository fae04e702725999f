package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	cache      domain.ProductCache
	metrics    *metrics.Metrics
}

// NewCatalogQueryService 创建商品目录查询服务实例，cache 与 m 可为 nil
func NewCatalogQueryService(
	categories domain.CategoryRepository,
	products domain.ProductRepository,
	cache domain.ProductCache,
	m *metrics.Metrics,
) *CatalogQueryService {
	return &CatalogQueryService{
		categories: categories,
		products:   products,
		cache:      cache,
		metrics:    m,
	}
}

// GetCategory 根据ID获取分类
func (s *CatalogQueryService) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errorx.NotFound("category %d not found", id)
	}
	return category, nil
}

// ListCategories 列出分类
func (s *CatalogQueryService) ListCategories(ctx context.Context, activeOnly bool) ([]*domain.Category, error) {
	return s.categories.List(ctx, activeOnly)
}

// GetProduct 根据ID获取商品，优先读缓存
func (s *CatalogQueryService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			logger.Warn(ctx, "Product cache read failed", "product_id", id, "error", err)
		} else if ok {
			s.metrics.RecordCache(true)
			return cached, nil
		}
		s.metrics.RecordCache(false)
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errorx.NotFound("product %d not found", id)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			logger.Warn(ctx, "Product cache write failed", "product_id", id, "error", err)
		}
	}
	return product, nil
}

// ListProducts 分页列出商品
func (s *CatalogQueryService) ListProducts(ctx context.Context, filter domain.ProductFilter, page, pageSize int) ([]*domain.Product, int64, error) {
	p := utils.NewPagination(page, pageSize)
	return s.products.List(ctx, filter, p.Offset(), p.Limit())
}

// FeaturedProducts 列出上架的推荐商品
func (s *CatalogQueryService) FeaturedProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	featured, active := true, true
	p := utils.NewPagination(1, limit)
	products, _, err := s.products.List(ctx, domain.ProductFilter{Featured: &featured, Active: &active}, 0, p.Limit())
	return products, err
}

package application

import (
	"strconv"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// CatalogService 商品目录应用服务，作为门面服务整合命令和查询服务
type CatalogService struct {
	*CatalogCommandService
	*CatalogQueryService
}

// NewCatalogService 创建商品目录应用服务
func NewCatalogService(
	categories domain.CategoryRepository,
	products domain.ProductRepository,
	cache domain.ProductCache,
	publisher domain.EventPublisher,
	tx TxManager,
	m *metrics.Metrics,
) *CatalogService {
	return &CatalogService{
		CatalogCommandService: NewCatalogCommandService(categories, products, cache, publisher, tx),
		CatalogQueryService:   NewCatalogQueryService(categories, products, cache, m),
	}
}

func keyOf(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

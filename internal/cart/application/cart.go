package application

import (
	"context"
	"strconv"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// CartApplicationService 购物车服务门面，整合命令服务和查询服务
type CartApplicationService struct {
	commandService *CartCommandService
	queryService   *CartQueryService
}

// NewCartApplicationService 创建购物车服务门面实例
func NewCartApplicationService(
	repo domain.CartRepository,
	products domain.ProductReader,
	publisher domain.EventPublisher,
	tx TxManager,
	m *metrics.Metrics,
) *CartApplicationService {
	return &CartApplicationService{
		commandService: NewCartCommandService(repo, products, publisher, tx, m),
		queryService:   NewCartQueryService(repo),
	}
}

// GetCart 根据用户ID获取购物车信息
func (s *CartApplicationService) GetCart(ctx context.Context, userID uint) (*domain.Cart, error) {
	return s.queryService.GetCart(ctx, userID)
}

// AddItem 处理添加商品到购物车
func (s *CartApplicationService) AddItem(ctx context.Context, userID, productID uint, qty int) (*domain.CartItem, error) {
	return s.commandService.AddItem(ctx, AddItemCommand{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	})
}

// UpdateItem 处理修改购物车行数量
func (s *CartApplicationService) UpdateItem(ctx context.Context, userID, itemID uint, qty int) (*domain.CartItem, error) {
	return s.commandService.UpdateItem(ctx, UpdateItemCommand{
		UserID:   userID,
		ItemID:   itemID,
		Quantity: qty,
	})
}

// RemoveItem 处理从购物车移除商品
func (s *CartApplicationService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	return s.commandService.RemoveItem(ctx, userID, itemID)
}

// ClearCart 处理清空购物车
func (s *CartApplicationService) ClearCart(ctx context.Context, userID uint) error {
	return s.commandService.ClearCart(ctx, userID)
}

func keyOf(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

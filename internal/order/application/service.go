package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/order/domain"
)

// OrderService 订单服务门面，整合命令服务和查询服务
type OrderService struct {
	commandService *OrderCommandService
	queryService   *OrderQueryService
}

// NewOrderService 创建订单服务门面实例
func NewOrderService(deps Deps) *OrderService {
	return &OrderService{
		commandService: NewOrderCommandService(deps),
		queryService:   NewOrderQueryService(deps.Orders),
	}
}

// PlaceOrder 已登录用户下单，成功后清空其购物车
func (s *OrderService) PlaceOrder(ctx context.Context, buyerID uint, items []LineItem, contact Contact) (*domain.Order, error) {
	return s.commandService.PlaceOrder(ctx, PlaceOrderCommand{BuyerID: &buyerID, Items: items, Contact: contact})
}

// PlaceGuestOrder 访客下单
func (s *OrderService) PlaceGuestOrder(ctx context.Context, items []LineItem, contact Contact) (*domain.Order, error) {
	return s.commandService.PlaceOrder(ctx, PlaceOrderCommand{Items: items, Contact: contact})
}

// UpdateOrderStatus 更新订单状态
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status string) (*domain.Order, error) {
	return s.commandService.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Status: status})
}

// ListOrders 查询全部订单
func (s *OrderService) ListOrders(ctx context.Context, status *string, page, pageSize int) ([]*domain.Order, int64, error) {
	return s.queryService.ListOrders(ctx, status, page, pageSize)
}

// MyOrders 查询当前用户订单
func (s *OrderService) MyOrders(ctx context.Context, userID uint, status *string, page, pageSize int) ([]*domain.Order, int64, error) {
	return s.queryService.ListUserOrders(ctx, userID, status, page, pageSize)
}

// GetOrder 按 id 查询订单
func (s *OrderService) GetOrder(ctx context.Context, id uint, viewer *Viewer) (*domain.Order, error) {
	return s.queryService.GetOrder(ctx, id, viewer)
}

// GetOrderByNumber 按订单号查询订单
func (s *OrderService) GetOrderByNumber(ctx context.Context, number string, viewer *Viewer) (*domain.Order, error) {
	return s.queryService.GetOrderByNumber(ctx, number, viewer)
}

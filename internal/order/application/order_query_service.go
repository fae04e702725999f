package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// Viewer 查询订单的调用方，nil 表示匿名
type Viewer struct {
	UserID uint
	Admin  bool
}

// OrderQueryService 订单查询服务
type OrderQueryService struct {
	orders domain.OrderRepository
}

// NewOrderQueryService 创建订单查询服务实例
func NewOrderQueryService(orders domain.OrderRepository) *OrderQueryService {
	return &OrderQueryService{orders: orders}
}

// ListOrders 查询全部订单
func (s *OrderQueryService) ListOrders(ctx context.Context, status *string, page, pageSize int) ([]*domain.Order, int64, error) {
	filter, err := statusFilter(status)
	if err != nil {
		return nil, 0, err
	}
	p := utils.NewPagination(page, pageSize)
	return s.orders.List(ctx, filter, p.Offset(), p.Limit())
}

// ListUserOrders 查询某用户的订单
func (s *OrderQueryService) ListUserOrders(ctx context.Context, userID uint, status *string, page, pageSize int) ([]*domain.Order, int64, error) {
	filter, err := statusFilter(status)
	if err != nil {
		return nil, 0, err
	}
	filter.UserID = &userID
	p := utils.NewPagination(page, pageSize)
	return s.orders.List(ctx, filter, p.Offset(), p.Limit())
}

// GetOrder 按 id 查询订单；用户订单仅本人与管理员可见，访客订单凭 id 可见
func (s *OrderQueryService) GetOrder(ctx context.Context, id uint, viewer *Viewer) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errorx.NotFound("order %d not found", id)
	}
	if err := authorize(order, viewer); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByNumber 按订单号查询订单，可见性同 GetOrder
func (s *OrderQueryService) GetOrderByNumber(ctx context.Context, number string, viewer *Viewer) (*domain.Order, error) {
	order, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errorx.NotFound("order %s not found", number)
	}
	if err := authorize(order, viewer); err != nil {
		return nil, err
	}
	return order, nil
}

func authorize(order *domain.Order, viewer *Viewer) error {
	if order.IsGuest() {
		return nil
	}
	if viewer != nil && (viewer.Admin || order.OwnedBy(viewer.UserID)) {
		return nil
	}
	return errorx.Forbidden("order %s is not visible to the caller", order.OrderNumber)
}

func statusFilter(status *string) (domain.OrderFilter, error) {
	var filter domain.OrderFilter
	if status == nil || *status == "" {
		return filter, nil
	}
	parsed, err := domain.ParseOrderStatus(*status)
	if err != nil {
		return filter, errorx.Validation("%s", err.Error())
	}
	filter.Status = &parsed
	return filter, nil
}

// Package application 订单应用服务
package application

import (
	"context"
	"slices"
	"time"

	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/validation"
)

// LineItem 下单商品行
type LineItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"gt=0"`
}

// Contact 收货联系人
type Contact struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	ShippingAddress string `json:"shipping_address" validate:"required,max=512"`
	Phone           string `json:"phone" validate:"max=32"`
	Notes           string `json:"notes" validate:"max=2000"`
}

// PlaceOrderCommand 下单命令，BuyerID 为空表示访客下单
type PlaceOrderCommand struct {
	BuyerID *uint
	Items   []LineItem `validate:"dive"`
	Contact Contact
}

// Validate 校验下单命令
func (c PlaceOrderCommand) Validate() error {
	if len(c.Items) == 0 {
		return errorx.Validation("order must contain at least one item")
	}
	return validation.Struct(c)
}

// UpdateStatusCommand 更新订单状态命令
type UpdateStatusCommand struct {
	OrderID uint   `validate:"required"`
	Status  string `validate:"required"`
}

// TxManager 事务管理
type TxManager interface {
	WithTxIsolation(ctx context.Context, isolation string, fn func(txCtx context.Context) error) error
}

// OrderCommandService 订单命令服务
type OrderCommandService struct {
	orders    domain.OrderRepository
	sequences domain.SequenceRepository
	products  domain.ProductStore
	carts     domain.CartCleaner
	cache     domain.ProductCacheInvalidator
	publisher domain.EventPublisher
	tx        TxManager
	isolation string
	metrics   *metrics.Metrics
}

// Deps 订单服务依赖
type Deps struct {
	Orders    domain.OrderRepository
	Sequences domain.SequenceRepository
	Products  domain.ProductStore
	Carts     domain.CartCleaner
	Cache     domain.ProductCacheInvalidator
	Publisher domain.EventPublisher
	Tx        TxManager
	// Isolation 下单事务隔离级别，空为数据库默认
	Isolation string
	Metrics   *metrics.Metrics
}

// NewOrderCommandService 创建订单命令服务实例
func NewOrderCommandService(deps Deps) *OrderCommandService {
	return &OrderCommandService{
		orders:    deps.Orders,
		sequences: deps.Sequences,
		products:  deps.Products,
		carts:     deps.Carts,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		tx:        deps.Tx,
		isolation: deps.Isolation,
		metrics:   deps.Metrics,
	}
}

// PlaceOrder 下单：锁定商品行、校验库存、按快照价格计价、分配订单号、写订单、扣库存、清空购物车，全部在同一事务内完成
func (s *OrderCommandService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		s.metrics.RecordOrderRejected(string(errorx.KindValidation))
		return nil, err
	}
	defer logger.LogDuration(ctx, "Order placement finished", "items", len(cmd.Items), "guest", cmd.BuyerID == nil)()

	order := &domain.Order{
		Status:          domain.OrderStatusPending,
		CustomerName:    cmd.Contact.Name,
		CustomerEmail:   cmd.Contact.Email,
		CustomerPhone:   cmd.Contact.Phone,
		ShippingAddress: cmd.Contact.ShippingAddress,
		Notes:           cmd.Contact.Notes,
		UserID:          cmd.BuyerID,
	}

	demand := make(map[uint]int, len(cmd.Items))
	for _, line := range cmd.Items {
		demand[line.ProductID] += line.Quantity
	}
	ids := make([]uint, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	err := s.tx.WithTxIsolation(ctx, s.isolation, func(txCtx context.Context) error {
		locked, err := s.products.LockByIDs(txCtx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint]int, len(locked))
		for i, p := range locked {
			byID[p.ID] = i
		}

		// 按输入顺序校验，同一商品多次出现时按累计数量判断
		requested := make(map[uint]int, len(demand))
		for _, line := range cmd.Items {
			idx, ok := byID[line.ProductID]
			if !ok {
				return errorx.NotFound("product %d not found", line.ProductID)
			}
			product := locked[idx]
			requested[line.ProductID] += line.Quantity
			if !product.HasStock(requested[line.ProductID]) {
				return errorx.InsufficientStock("insufficient stock for product %s (id %d): requested %d, available %d",
					product.Name, product.ID, requested[line.ProductID], product.Stock)
			}
			order.AddItem(product.ID, line.Quantity, product.Price)
		}

		seq, err := s.sequences.Next(txCtx, domain.OrderSequenceName)
		if err != nil {
			return err
		}
		order.OrderNumber = domain.FormatOrderNumber(seq)

		if err := s.orders.Create(txCtx, order); err != nil {
			return err
		}

		for _, id := range ids {
			ok, err := s.products.DecrementStock(txCtx, id, demand[id])
			if err != nil {
				return err
			}
			if !ok {
				return errorx.InsufficientStock("insufficient stock for product %d", id)
			}
		}

		if cmd.BuyerID != nil {
			if _, err := s.carts.DeleteByUser(txCtx, *cmd.BuyerID); err != nil {
				return err
			}
		}

		return s.publisher.Publish(txCtx, domain.TopicOrderCreated, order.OrderNumber, newOrderCreatedEvent(order))
	})
	if err != nil {
		s.metrics.RecordOrderRejected(string(errorx.KindOf(err)))
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateProducts(ctx, ids...)
	}
	s.metrics.RecordOrder(order.IsGuest(), order.Total.InexactFloat64())
	logger.Info(ctx, "order placed",
		"order_number", order.OrderNumber,
		"total", order.Total.StringFixed(2),
		"guest", order.IsGuest())

	return s.orders.GetByID(ctx, order.ID)
}

// UpdateStatus 更新订单状态，不限制状态流转方向
func (s *OrderCommandService) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*domain.Order, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}
	status, err := domain.ParseOrderStatus(cmd.Status)
	if err != nil {
		return nil, errorx.Validation("%s", err.Error())
	}

	err = s.tx.WithTxIsolation(ctx, "", func(txCtx context.Context) error {
		order, err := s.orders.GetByID(txCtx, cmd.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return errorx.NotFound("order %d not found", cmd.OrderID)
		}
		if err := s.orders.UpdateStatus(txCtx, order.ID, status); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicOrderStatusChanged, order.OrderNumber, domain.OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			OldStatus:   order.Status,
			NewStatus:   status,
			OccurredOn:  time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, cmd.OrderID)
}

func newOrderCreatedEvent(order *domain.Order) domain.OrderCreatedEvent {
	lines := make([]domain.OrderCreatedLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = domain.OrderCreatedLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		Items:       lines,
		OccurredOn:  time.Now(),
	}
}

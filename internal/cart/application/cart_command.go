package application

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/validation"
	"gorm.io/gorm"
)

// AddItemCommand 添加商品到购物车命令
type AddItemCommand struct {
	UserID    uint `validate:"required"`
	ProductID uint `validate:"required"`
	Quantity  int  `validate:"gt=0"`
}

// UpdateItemCommand 修改购物车行数量命令
type UpdateItemCommand struct {
	UserID   uint `validate:"required"`
	ItemID   uint `validate:"required"`
	Quantity int  `validate:"gt=0"`
}

// TxManager 事务管理
type TxManager interface {
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// CartCommandService 购物车命令服务
type CartCommandService struct {
	repo      domain.CartRepository
	products  domain.ProductReader
	publisher domain.EventPublisher
	tx        TxManager
	metrics   *metrics.Metrics
}

// NewCartCommandService 创建购物车命令服务实例
func NewCartCommandService(
	repo domain.CartRepository,
	products domain.ProductReader,
	publisher domain.EventPublisher,
	tx TxManager,
	m *metrics.Metrics,
) *CartCommandService {
	return &CartCommandService{
		repo:      repo,
		products:  products,
		publisher: publisher,
		tx:        tx,
		metrics:   m,
	}
}

// AddItem 处理添加商品到购物车，已有同商品行时累加数量，累计数量不得超过库存
func (s *CartCommandService) AddItem(ctx context.Context, cmd AddItemCommand) (*domain.CartItem, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	var itemID uint
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.products.GetByID(txCtx, cmd.ProductID)
		if err != nil {
			return err
		}
		if product == nil || !product.Active {
			return errorx.NotFound("product %d not found", cmd.ProductID)
		}

		item, err := s.repo.FindItem(txCtx, cmd.UserID, cmd.ProductID)
		if err != nil {
			return err
		}

		wanted := cmd.Quantity
		if item != nil {
			wanted += item.Quantity
		}
		if !product.HasStock(wanted) {
			return errorx.InsufficientStock("insufficient stock for product %s: requested %d, available %d",
				product.Name, wanted, product.Stock)
		}

		if item != nil {
			ok, err := s.repo.IncrementQuantity(txCtx, item.ID, cmd.Quantity, product.Stock)
			if err != nil {
				return err
			}
			if !ok {
				return errorx.InsufficientStock("insufficient stock for product %s: available %d", product.Name, product.Stock)
			}
			itemID = item.ID
		} else {
			item = &domain.CartItem{UserID: cmd.UserID, ProductID: cmd.ProductID, Quantity: wanted}
			if err := s.repo.Save(txCtx, item); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errorx.Conflict("cart item for product %d was modified concurrently", cmd.ProductID)
				}
				return err
			}
			itemID = item.ID
		}

		return s.publisher.Publish(txCtx, domain.TopicCartItemAdded, keyOf(cmd.UserID), domain.CartItemAddedEvent{
			UserID:    cmd.UserID,
			ProductID: cmd.ProductID,
			Quantity:  cmd.Quantity,
			Total:     wanted,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCartOperation("add")
	return s.repo.GetItem(ctx, itemID)
}

// UpdateItem 修改购物车行数量，仅限本人
func (s *CartCommandService) UpdateItem(ctx context.Context, cmd UpdateItemCommand) (*domain.CartItem, error) {
	if err := validation.Struct(cmd); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		item, err := s.ownedItem(txCtx, cmd.UserID, cmd.ItemID)
		if err != nil {
			return err
		}

		product, err := s.products.GetByID(txCtx, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return errorx.NotFound("product %d not found", item.ProductID)
		}
		if !product.HasStock(cmd.Quantity) {
			return errorx.InsufficientStock("insufficient stock for product %s: requested %d, available %d",
				product.Name, cmd.Quantity, product.Stock)
		}

		item.Quantity = cmd.Quantity
		if err := s.repo.Save(txCtx, item); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicCartItemUpdated, keyOf(cmd.UserID), domain.CartItemUpdatedEvent{
			UserID:    cmd.UserID,
			ProductID: item.ProductID,
			Quantity:  cmd.Quantity,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCartOperation("update")
	return s.repo.GetItem(ctx, cmd.ItemID)
}

// RemoveItem 删除购物车行，仅限本人
func (s *CartCommandService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		item, err := s.ownedItem(txCtx, userID, itemID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteItem(txCtx, itemID); err != nil {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicCartItemRemoved, keyOf(userID), domain.CartItemRemovedEvent{
			UserID:    userID,
			ProductID: item.ProductID,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return err
	}
	s.metrics.RecordCartOperation("remove")
	return nil
}

// ClearCart 清空购物车，幂等
func (s *CartCommandService) ClearCart(ctx context.Context, userID uint) error {
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		removed, err := s.repo.DeleteByUser(txCtx, userID)
		if err != nil || removed == 0 {
			return err
		}
		return s.publisher.Publish(txCtx, domain.TopicCartCleared, keyOf(userID), domain.CartClearedEvent{
			UserID:    userID,
			Removed:   removed,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return err
	}
	s.metrics.RecordCartOperation("clear")
	return nil
}

func (s *CartCommandService) ownedItem(ctx context.Context, userID, itemID uint) (*domain.CartItem, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errorx.NotFound("cart item %d not found", itemID)
	}
	if item.UserID != userID {
		return nil, errorx.Forbidden("cart item %d does not belong to the caller", itemID)
	}
	return item, nil
}

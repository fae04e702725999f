package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/cart/domain"
)

// CartQueryService 购物车查询服务
type CartQueryService struct {
	repo domain.CartRepository
}

// NewCartQueryService 创建购物车查询服务实例
func NewCartQueryService(repo domain.CartRepository) *CartQueryService {
	return &CartQueryService{repo: repo}
}

// GetCart 获取用户购物车，空购物车返回空列表
func (s *CartQueryService) GetCart(ctx context.Context, userID uint) (*domain.Cart, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Cart{UserID: userID, Items: items}, nil
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/cache"
)

type productCache struct {
	cache  *cache.RedisCache
	prefix string
	ttl    time.Duration
}

// NewProductCache 创建商品读缓存
func NewProductCache(c *cache.RedisCache, ttl time.Duration) domain.ProductCache {
	return &productCache{cache: c, prefix: "catalog:product:", ttl: ttl}
}

func (c *productCache) key(id uint) string {
	return fmt.Sprintf("%s%d", c.prefix, id)
}

func (c *productCache) Get(ctx context.Context, id uint) (*domain.Product, bool, error) {
	var p domain.Product
	ok, err := c.cache.GetJSON(ctx, c.key(id), &p)
	if err != nil || !ok {
		return nil, false, err
	}
	return &p, true, nil
}

func (c *productCache) Set(ctx context.Context, product *domain.Product) error {
	return c.cache.SetJSON(ctx, c.key(product.ID), product, c.ttl)
}

func (c *productCache) Invalidate(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	return c.cache.Delete(ctx, keys...)
}

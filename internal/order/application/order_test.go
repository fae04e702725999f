package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartdomain "github.com/wyfcoding/storefront/internal/cart/domain"
	cartmysql "github.com/wyfcoding/storefront/internal/cart/infrastructure/persistence/mysql"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/mysql"
	catalogredis "github.com/wyfcoding/storefront/internal/catalog/infrastructure/persistence/redis"
	"github.com/wyfcoding/storefront/internal/order/application"
	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/internal/order/infrastructure/messaging"
	"github.com/wyfcoding/storefront/internal/order/infrastructure/persistence/mysql"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/db/dbtest"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/outbox"
)

const (
	alice uint = 1
	bob   uint = 2
)

var contact = application.Contact{
	Name:            "Alice",
	Email:           "alice@example.com",
	ShippingAddress: "1 Main St",
}

type fixture struct {
	svc     *application.OrderService
	catalog *catalogapp.CatalogService
	db      *db.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	database := dbtest.New(t,
		&catalogdomain.Category{}, &catalogdomain.Product{}, &cartdomain.CartItem{},
		&domain.Order{}, &domain.OrderItem{}, &domain.OrderSequence{}, &outbox.Message{},
	)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager := outbox.NewManager(database.DB)
	products := catalogmysql.NewProductRepository(database.DB)
	catalog := catalogapp.NewCatalogService(
		catalogmysql.NewCategoryRepository(database.DB),
		products,
		catalogredis.NewProductCache(cache.NewFromClient(client), time.Minute),
		manager,
		database,
		nil,
	)

	svc := application.NewOrderService(application.Deps{
		Orders:    mysql.NewOrderRepository(database.DB),
		Sequences: mysql.NewSequenceRepository(database.DB),
		Products:  products,
		Carts:     cartmysql.NewCartRepository(database.DB),
		Cache:     catalog,
		Publisher: messaging.NewOutboxEventPublisher(manager),
		Tx:        database,
	})
	return fixture{svc: svc, catalog: catalog, db: database}
}

func (f fixture) product(t *testing.T, name string, stock int, price string) *catalogdomain.Product {
	t.Helper()
	c := &catalogdomain.Category{Name: "General", Active: true}
	require.NoError(t, f.db.Create(c).Error)
	p := &catalogdomain.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Active:     true,
		CategoryID: c.ID,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f fixture) stockOf(t *testing.T, id uint) int {
	t.Helper()
	var p catalogdomain.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.Stock
}

func (f fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestPlaceOrderScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Mug", 5, "10.00")

	order, err := f.svc.PlaceGuestOrder(ctx, []application.LineItem{{ProductID: p.ID, Quantity: 3}}, contact)
	require.NoError(t, err)

	assert.Equal(t, "30.00", order.Total.StringFixed(2))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "ORD-001", order.OrderNumber)
	assert.True(t, order.IsGuest())
	assert.Equal(t, 2, f.stockOf(t, p.ID))

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, item.Product)
	require.NotNil(t, item.Product.Category)
	assert.Equal(t, "General", item.Product.Category.Name)

	var msg outbox.Message
	require.NoError(t, f.db.Where("topic = ?", domain.TopicOrderCreated).First(&msg).Error)
	assert.Equal(t, "ORD-001", msg.Key)
}

func TestPlaceOrderTotalIndependentOfOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 10, "2.50")
	b := f.product(t, "B", 10, "7.25")

	first, err := f.svc.PlaceGuestOrder(ctx, []application.LineItem{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 1},
	}, contact)
	require.NoError(t, err)

	second, err := f.svc.PlaceGuestOrder(ctx, []application.LineItem{
		{ProductID: b.ID, Quantity: 1},
		{ProductID: a.ID, Quantity: 2},
	}, contact)
	require.NoError(t, err)

	assert.Equal(t, "12.25", first.Total.StringFixed(2))
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, a.ID, first.Items[0].ProductID)
	assert.Equal(t, b.ID, second.Items[0].ProductID)
	assert.Equal(t, "ORD-002", second.OrderNumber)
}

func TestPlaceOrderMissingProductLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Mug", 5, "10.00")

	_, err := f.svc.PlaceGuestOrder(ctx, []application.LineItem{
		{ProductID: p.ID, Quantity: 1},
		{ProductID: 9999, Quantity: 1},
	}, contact)
	require.ErrorIs(t, err, errorx.ErrNotFound)
	assert.Contains(t, err.Error(), "9999")

	assert.Equal(t, 5, f.stockOf(t, p.ID))
	assert.Zero(t, f.count(t, &domain.Order{}))
	assert.Zero(t, f.count(t, &domain.OrderItem{}))
	assert.Zero(t, f.count(t, &outbox.Message{}))

	// 回滚后序列未前进
	order, err := f.svc.PlaceGuestOrder(ctx, []application.LineItem{{ProductID: p.ID, Quantity: 1}}, contact)
	require.NoError(t, err)
	assert.Equal(t, "ORD-001", order.OrderNumber)
}

func TestPlaceOrderInsufficientStockLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", 5, "1.00")
	b := f.product(t, "B", 2, "1.00")

	_, err := f.svc.PlaceOrder(ctx, alice, []application.LineItem{
		{ProductID: a.ID, Quantity: 1},
		{ProductID: b.ID, Quantity: 3},
	}, contact)
	require.ErrorIs(t, err, errorx.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "B")

	assert.Equal(t, 5, f.stockOf(t, a.ID))
	assert.Equal(t, 2, f.stockOf(t, b.ID))
	assert.Zero(t, f.count(t, &domain.Order{}))
}

func TestPlaceOrderChecksCumulativeDemand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Mug", 3, "1.00")

	_, err := f.svc.PlaceGuestOrder(ctx, []application.LineItem{
		{ProductID: p.ID, Quantity: 2},
		{ProductID: p.ID, Quantity: 2},
	}, contact)
	require.ErrorIs(t, err, errorx.ErrInsufficientStock)
	assert.Equal(t, 3, f.stockOf(t, p.ID))

	order, err := f.svc.PlaceGuestOrder(ctx, []application.LineItem{
		{ProductID: p.ID, Quantity: 1},
		{ProductID: p.ID, Quantity: 2},
	}, contact)
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
	assert.Zero(t, f.stockOf(t, p.ID))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Mug", 3, "1.00")

	tests := []struct {
		name    string
		items   []application.LineItem
		contact application.Contact
	}{
		{"no items", nil, contact},
		{"zero quantity", []application.LineItem{{ProductID: p.ID, Quantity: 0}}, contact},
		{"bad email", []application.LineItem{{ProductID: p.ID, Quantity: 1}}, application.Contact{
			Name: "A", Email: "nope", ShippingAddress: "x",
		}},
		{"missing address", []application.LineItem{{ProductID: p.ID, Quantity: 1}}, application.Contact{
			Name: "A", Email: "a@example.com",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PlaceGuestOrder(ctx, tt.items, tt.contact)
			require.ErrorIs(t, err, errorx.ErrValidation)
		})
	}
	assert.Equal(t, 3, f.stockOf(t, p.ID))
}

func TestPlaceOrderClearsBuyerCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Mug", 10, "4.00")

	require.NoError(t, f.db.Create(&cartdomain.CartItem{UserID: alice, ProductID: p.ID, Quantity: 2}).Error)
	require.NoError(t, f.db.Create(&cartdomain.CartItem{UserID: bob, ProductID: p.ID, Quantity: 1}).Error)

	order, err := f.svc.PlaceOrder(ctx, alice, []application.LineItem{{ProductID: p.ID, Quantity: 2}}, contact)
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, alice, *order.UserID)

	var remaining []cartdomain.CartItem
	require.NoError(t, f.db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, bob, remaining[0].UserID)
}

func TestPlaceOrderInvalidatesProductCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Mug", 5, "1.00")

	cached, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 5, cached.Stock)

	_, err = f.svc.PlaceGuestOrder(ctx, []application.LineItem{{ProductID: p.ID, Quantity: 4}}, contact)
	require.NoError(t, err)

	fresh, err := f.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Stock)
}

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Last", 1, "5.00")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.PlaceGuestOrder(ctx, []application.LineItem{{ProductID: p.ID, Quantity: 1}}, contact)
		}()
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errorx.IsKind(err, errorx.KindInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Zero(t, f.stockOf(t, p.ID))
	assert.Equal(t, int64(1), f.count(t, &domain.Order{}))
}

func TestOrderVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Mug", 10, "1.00")
	items := []application.LineItem{{ProductID: p.ID, Quantity: 1}}

	owned, err := f.svc.PlaceOrder(ctx, alice, items, contact)
	require.NoError(t, err)
	guest, err := f.svc.PlaceGuestOrder(ctx, items, contact)
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, owned.ID, &application.Viewer{UserID: alice})
	require.NoError(t, err)
	_, err = f.svc.GetOrder(ctx, owned.ID, &application.Viewer{UserID: 99, Admin: true})
	require.NoError(t, err)
	_, err = f.svc.GetOrder(ctx, owned.ID, &application.Viewer{UserID: bob})
	require.ErrorIs(t, err, errorx.ErrForbidden)
	_, err = f.svc.GetOrderByNumber(ctx, owned.OrderNumber, nil)
	require.ErrorIs(t, err, errorx.ErrForbidden)

	byNumber, err := f.svc.GetOrderByNumber(ctx, guest.OrderNumber, nil)
	require.NoError(t, err)
	assert.Equal(t, guest.ID, byNumber.ID)

	_, err = f.svc.GetOrder(ctx, 4242, nil)
	require.ErrorIs(t, err, errorx.ErrNotFound)

	mine, total, err := f.svc.MyOrders(ctx, alice, nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, owned.ID, mine[0].ID)

	all, total, err := f.svc.ListOrders(ctx, nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Mug", 10, "1.00")

	order, err := f.svc.PlaceGuestOrder(ctx, []application.LineItem{{ProductID: p.ID, Quantity: 1}}, contact)
	require.NoError(t, err)

	updated, err := f.svc.UpdateOrderStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)

	// 允许任意状态之间切换
	updated, err = f.svc.UpdateOrderStatus(ctx, order.ID, "PENDING")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, updated.Status)

	_, err = f.svc.UpdateOrderStatus(ctx, order.ID, "LOST")
	require.ErrorIs(t, err, errorx.ErrValidation)
	_, err = f.svc.UpdateOrderStatus(ctx, 4242, "SHIPPED")
	require.ErrorIs(t, err, errorx.ErrNotFound)

	shipped := "SHIPPED"
	_, total, err := f.svc.ListOrders(ctx, &shipped, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)

	var changes int64
	require.NoError(t, f.db.Model(&outbox.Message{}).Where("topic = ?", domain.TopicOrderStatusChanged).Count(&changes).Error)
	assert.Equal(t, int64(2), changes)
}

package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/order/domain"
)

func TestAddItemAccumulatesTotal(t *testing.T) {
	var o domain.Order
	o.AddItem(1, 3, decimal.RequireFromString("10.00"))
	o.AddItem(2, 2, decimal.RequireFromString("0.10"))

	assert.Equal(t, "30.20", o.Total.StringFixed(2))
	require.Len(t, o.Items, 2)
	assert.Equal(t, uint(1), o.Items[0].ProductID)
	assert.Equal(t, "0.20", o.Items[1].Subtotal().StringFixed(2))
}

func TestParseOrderStatus(t *testing.T) {
	s, err := domain.ParseOrderStatus(" delivered ")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, s)

	_, err = domain.ParseOrderStatus("REFUNDED")
	assert.Error(t, err)
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-007", domain.FormatOrderNumber(7))
	assert.Equal(t, "ORD-1234", domain.FormatOrderNumber(1234))
}

func TestOwnership(t *testing.T) {
	uid := uint(5)
	owned := domain.Order{UserID: &uid}
	assert.True(t, owned.OwnedBy(5))
	assert.False(t, owned.OwnedBy(6))
	assert.False(t, owned.IsGuest())
	assert.True(t, (&domain.Order{}).IsGuest())
}

package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]OrderStatus]bool{
		{OrderStatusPendingPayment, OrderStatusPaid}:      true,
		{OrderStatusPendingPayment, OrderStatusCancelled}: true,
		{OrderStatusPaid, OrderStatusShipped}:             true,
		{OrderStatusShipped, OrderStatusCompleted}:        true,
	}
	for _, from := range OrderStatuses {
		for _, to := range OrderStatuses {
			assert.Equal(t, allowed[[2]OrderStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPaid.Terminal())
}

func TestStampsFor(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	st := StampsFor(OrderStatusPaid, now)
	require.NotNil(t, st.PaidAt)
	assert.True(t, st.PaidAt.Equal(now))
	assert.Nil(t, st.ShippedAt)

	st = StampsFor(OrderStatusShipped, now)
	assert.Nil(t, st.PaidAt)
	require.NotNil(t, st.ShippedAt)

	assert.Equal(t, StatusStamps{}, StampsFor(OrderStatusCompleted, now))
	assert.Equal(t, StatusStamps{}, StampsFor(OrderStatusCancelled, now))
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range OrderStatuses {
		got, ok := ParseOrderStatus(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := ParseOrderStatus("paid")
	assert.False(t, ok)
	assert.False(t, OrderStatus(0).Valid())
	assert.Equal(t, "UNKNOWN", OrderStatus(6).String())
}

func TestAddressFormat(t *testing.T) {
	a := Address{Recipient: " Taro ", PostalCode: "100-0001", Region: "Tokyo", City: "Chiyoda", Line1: "1-1", Line2: "  "}
	assert.Equal(t, "Taro, 100-0001, Tokyo, Chiyoda, 1-1", a.Format())
}

func TestOrderItemSubtotal(t *testing.T) {
	it := OrderItem{Quantity: 3}
	it.Price = it.Price.Add(mustDecimal(t, "2.50"))
	assert.Equal(t, "7.50", it.Subtotal().StringFixed(2))
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

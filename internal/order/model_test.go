package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePaymentMethod(t *testing.T) {
	for _, s := range []string{"cash", "CARD", " upi ", "Credit"} {
		m, ok := ParsePaymentMethod(s)
		assert.True(t, ok, s)
		assert.NotEmpty(t, m)
	}
	_, ok := ParsePaymentMethod("bitcoin")
	assert.False(t, ok)
	_, ok = ParsePaymentMethod("")
	assert.False(t, ok)
}

func TestPaymentMethodLabel(t *testing.T) {
	assert.Equal(t, "Cash", PaymentCash.Label())
	assert.Equal(t, "UPI", PaymentUPI.Label())
	assert.Equal(t, "Credit", PaymentCredit.Label())
}

func TestSumItems(t *testing.T) {
	items := []Item{
		{TotalPrice: decimal.RequireFromString("90.00")},
		{TotalPrice: decimal.RequireFromString("65.00")},
	}
	assert.Equal(t, "155.00", SumItems(items).StringFixed(2))
	assert.True(t, SumItems(nil).IsZero())
}

func TestNormalizeQuery(t *testing.T) {
	q := NormalizeQuery(Query{Q: "  walk ", Limit: 500, Offset: -3})
	assert.Equal(t, Query{Q: "walk", Limit: 20, Offset: 0}, q)

	q = NormalizeQuery(Query{Limit: 50, Offset: 10})
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, 10, q.Offset)
}

package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/caja-pos/internal/apperr"
	"github.com/MikeMC777/caja-pos/internal/order"
	"github.com/MikeMC777/caja-pos/internal/product"
)

type stubOrders struct {
	from, to time.Time
	err      error
}

func (s *stubOrders) Stats(_ context.Context, from, to time.Time) (order.Stats, error) {
	s.from, s.to = from, to
	return order.Stats{Orders: 3, Sales: decimal.RequireFromString("310.50")}, s.err
}

func (s *stubOrders) Count(context.Context) (int, error) { return 42, nil }

type stubProducts struct{ q product.Query }

func (s *stubProducts) List(_ context.Context, q product.Query) ([]product.Product, error) {
	s.q = q
	return make([]product.Product, 7), nil
}

func TestSummary(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	orders, products := &stubOrders{}, &stubProducts{}
	d := NewDashboard(orders, products, loc)
	// 20:00 UTC is already the next day in IST.
	d.now = func() time.Time { return time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC) }

	s, err := d.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", s.Day)
	assert.Equal(t, "310.50", s.TodaySales.StringFixed(2))
	assert.Equal(t, 3, s.TodayOrders)
	assert.Equal(t, 7, s.ActiveProducts)
	assert.Equal(t, 42, s.TotalOrders)
	assert.True(t, products.q.ActiveOnly)

	assert.True(t, orders.from.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, loc)))
	assert.Equal(t, 24*time.Hour, orders.to.Sub(orders.from))
}

func TestSummary_StoreError(t *testing.T) {
	d := NewDashboard(&stubOrders{err: errors.New("db down")}, &stubProducts{}, nil)
	_, err := d.Summary(context.Background())
	assert.Equal(t, apperr.KindRemote, apperr.KindOf(err))
}

// Package report builds the dashboard summary.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/caja-pos/internal/apperr"
	"github.com/MikeMC777/caja-pos/internal/order"
	"github.com/MikeMC777/caja-pos/internal/product"
)

type OrderStats interface {
	Stats(ctx context.Context, from, to time.Time) (order.Stats, error)
	Count(ctx context.Context) (int, error)
}

type ProductLister interface {
	List(ctx context.Context, q product.Query) ([]product.Product, error)
}

type Summary struct {
	Day            string          `json:"day"`
	TodaySales     decimal.Decimal `json:"today_sales"`
	TodayOrders    int             `json:"today_orders"`
	ActiveProducts int             `json:"active_products"`
	TotalOrders    int             `json:"total_orders"`
}

type Dashboard struct {
	orders   OrderStats
	products ProductLister
	loc      *time.Location
	now      func() time.Time
}

func NewDashboard(orders OrderStats, products ProductLister, loc *time.Location) *Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	return &Dashboard{orders: orders, products: products, loc: loc, now: time.Now}
}

// DayBounds returns local midnight of t's day and the next midnight.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func (d *Dashboard) Summary(ctx context.Context) (Summary, error) {
	const op = "report.summary"
	from, to := DayBounds(d.now(), d.loc)

	today, err := d.orders.Stats(ctx, from, to)
	if err != nil {
		return Summary{}, apperr.Remote(op, err)
	}
	total, err := d.orders.Count(ctx)
	if err != nil {
		return Summary{}, apperr.Remote(op, err)
	}
	active, err := d.products.List(ctx, product.Query{ActiveOnly: true})
	if err != nil {
		return Summary{}, apperr.Remote(op, err)
	}
	return Summary{
		Day:            from.Format("2006-01-02"),
		TodaySales:     today.Sales,
		TodayOrders:    today.Orders,
		ActiveProducts: len(active),
		TotalOrders:    total,
	}, nil
}

package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/caja-pos/internal/apperr"
	"github.com/MikeMC777/caja-pos/internal/cart"
	"github.com/MikeMC777/caja-pos/internal/order"
	"github.com/MikeMC777/caja-pos/internal/product"
)

type fakeStore struct {
	mu      sync.Mutex
	err     error
	block   chan struct{}
	entered chan struct{}
	calls   int
	orders  []order.Order
	items   [][]order.Item
}

func (s *fakeStore) Create(ctx context.Context, o *order.Order, items []order.Item) error {
	s.mu.Lock()
	s.calls++
	block, entered := s.block, s.entered
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if s.err != nil {
		return s.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = int64(len(s.orders) + 1)
	o.CreatedAt = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	for i := range items {
		items[i].ID = int64(i + 1)
		items[i].OrderID = o.ID
	}
	s.orders = append(s.orders, *o)
	s.items = append(s.items, append([]order.Item(nil), items...))
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func p(id int64, name, price string) product.Product {
	return product.Product{ID: id, Name: name, Price: dec(price)}
}

func scenarioFlow(store OrderWriter) *Flow {
	f := New(store, cart.New())
	_ = f.Add(p(1, "Masala Dosa", "45.00"))
	_ = f.Add(p(1, "Masala Dosa", "45.00"))
	_ = f.Add(p(2, "Thali", "65.00"))
	return f
}

func TestSelectMethod_EmptyCartRejected(t *testing.T) {
	for _, m := range []order.PaymentMethod{order.PaymentCash, order.PaymentCard, order.PaymentUPI, order.PaymentCredit} {
		f := New(&fakeStore{}, nil)
		err := f.SelectMethod(m)
		require.Error(t, err, m)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Equal(t, "cart is empty", apperr.Message(err))
		assert.Equal(t, StateIdle, f.State())
	}
}

func TestSelectMethod_UnknownMethod(t *testing.T) {
	f := scenarioFlow(&fakeStore{})
	err := f.SelectMethod("barter")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, StateIdle, f.State())
}

func TestSelectMethod_StoresCanonicalName(t *testing.T) {
	store := &fakeStore{}
	f := scenarioFlow(store)
	require.NoError(t, f.SelectMethod(" CASH "))
	assert.Equal(t, order.PaymentCash, f.Snapshot().Method)

	_, _ = f.BeginCapture()
	_, err := f.Tender(dec("155"), "")
	require.NoError(t, err)
	_, err = f.Place(context.Background())
	require.NoError(t, err)
	require.Len(t, store.orders, 1)
	assert.Equal(t, order.PaymentCash, store.orders[0].PaymentMethod)
}

func TestBeginCapture_PrefillsTotal(t *testing.T) {
	f := scenarioFlow(&fakeStore{})
	require.NoError(t, f.SelectMethod(order.PaymentCash))
	assert.Equal(t, StateMethodSelected, f.State())

	c, err := f.BeginCapture()
	require.NoError(t, err)
	assert.Equal(t, StateAmountCapture, f.State())
	assert.Equal(t, "155.00", c.Total.StringFixed(2))
	assert.True(t, c.Tendered.Equal(c.Total))
	require.Len(t, c.QuickAmounts, 3)
	assert.Equal(t, []string{"155", "160", "200"}, []string{
		c.QuickAmounts[0].String(), c.QuickAmounts[1].String(), c.QuickAmounts[2].String(),
	})
}

func TestBeginCapture_RequiresMethod(t *testing.T) {
	f := scenarioFlow(&fakeStore{})
	_, err := f.BeginCapture()
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestTender_Shortfall(t *testing.T) {
	f := scenarioFlow(&fakeStore{})
	require.NoError(t, f.SelectMethod(order.PaymentCash))
	_, err := f.BeginCapture()
	require.NoError(t, err)

	_, err = f.Tender(dec("100.00"), "")
	var sf *ShortfallError
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "55.00", sf.Shortfall().StringFixed(2))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, StateAmountCapture, f.State())
}

func TestTender_ExactAndOver(t *testing.T) {
	f := scenarioFlow(&fakeStore{})
	require.NoError(t, f.SelectMethod(order.PaymentCard))
	_, _ = f.BeginCapture()

	td, err := f.Tender(dec("155.00"), "")
	require.NoError(t, err)
	assert.True(t, td.Change.IsZero())
	assert.Equal(t, StateConfirmed, f.State())

	td, err = f.Tender(dec("200.00"), "table 4")
	require.NoError(t, err)
	assert.Equal(t, "45.00", td.Change.StringFixed(2))
	assert.Equal(t, StateConfirmed, f.State())
}

func TestTender_Negative(t *testing.T) {
	f := scenarioFlow(&fakeStore{})
	_ = f.SelectMethod(order.PaymentCash)
	_, _ = f.BeginCapture()
	_, err := f.Tender(dec("-1"), "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPlace_Scenario(t *testing.T) {
	store := &fakeStore{}
	f := scenarioFlow(store)
	require.NoError(t, f.SelectMethod(order.PaymentCash))
	_, _ = f.BeginCapture()
	_, err := f.Tender(dec("200.00"), "no onions")
	require.NoError(t, err)

	res, err := f.Place(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateOrderPersisted, f.State())

	require.Len(t, store.orders, 1)
	o := store.orders[0]
	assert.Equal(t, "155.00", o.TotalAmount.StringFixed(2))
	assert.Equal(t, order.PaymentCash, o.PaymentMethod)
	assert.Equal(t, order.WalkInCustomer, o.CustomerName)
	assert.Equal(t, order.PaymentCompleted, o.PaymentStatus)
	assert.Equal(t, order.StatusFulfilled, o.OrderStatus)
	assert.Equal(t, "no onions", o.Note)

	items := store.items[0]
	require.Len(t, items, 2)
	assert.Equal(t, "90.00", items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "65.00", items[1].TotalPrice.StringFixed(2))
	assert.True(t, order.SumItems(items).Equal(o.TotalAmount))

	assert.Equal(t, int64(1), res.Order.ID)
	assert.Equal(t, "45.00", res.Change.StringFixed(2))

	// cart is retained until a new invoice
	snap := f.Snapshot()
	assert.Len(t, snap.Lines, 2)
	require.NotNil(t, snap.Result)

	require.NoError(t, f.NewInvoice())
	snap = f.Snapshot()
	assert.Empty(t, snap.Lines)
	assert.Nil(t, snap.Result)
	assert.Equal(t, "idle", snap.State)
}

func TestPlace_RequiresConfirmation(t *testing.T) {
	store := &fakeStore{}
	f := scenarioFlow(store)
	_ = f.SelectMethod(order.PaymentCash)
	_, _ = f.BeginCapture()

	_, err := f.Place(context.Background())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Zero(t, store.calls)
}

func TestPlace_FailureLeavesCart(t *testing.T) {
	cause := errors.New("connection reset")
	store := &fakeStore{err: cause}
	f := scenarioFlow(store)
	_ = f.SelectMethod(order.PaymentUPI)
	_, _ = f.BeginCapture()
	_, _ = f.Tender(dec("155"), "")

	_, err := f.Place(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindRemote, apperr.KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StateFailed, f.State())

	snap := f.Snapshot()
	assert.Len(t, snap.Lines, 2)
	assert.Equal(t, "155.00", snap.Total.StringFixed(2))
	assert.Equal(t, ErrOrderNotSaved, snap.LastError)
	assert.NotContains(t, snap.LastError, "connection reset")
	_, ok := f.LastResult()
	assert.False(t, ok)

	// a failed attempt behaves as idle for the next one
	require.NoError(t, f.SelectMethod(order.PaymentCash))
}

func TestPlace_CallerCancelDoesNotAbortWrite(t *testing.T) {
	store := &fakeStore{block: make(chan struct{}), entered: make(chan struct{})}
	f := scenarioFlow(store)
	_ = f.SelectMethod(order.PaymentCash)
	_, _ = f.BeginCapture()
	_, _ = f.Tender(dec("155"), "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.Place(ctx)
		done <- err
	}()
	<-store.entered
	cancel()
	close(store.block)

	require.NoError(t, <-done)
	assert.Equal(t, StateOrderPersisted, f.State())
	assert.Len(t, store.orders, 1)
}

func TestPlace_RejectsDuplicateWhileInFlight(t *testing.T) {
	store := &fakeStore{block: make(chan struct{}), entered: make(chan struct{})}
	f := scenarioFlow(store)
	_ = f.SelectMethod(order.PaymentCash)
	_, _ = f.BeginCapture()
	_, _ = f.Tender(dec("155"), "")

	done := make(chan error, 1)
	go func() {
		_, err := f.Place(context.Background())
		done <- err
	}()
	<-store.entered

	_, err := f.Place(context.Background())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(f.Add(p(3, "Tea", "1.00"))))
	assert.True(t, f.Snapshot().Processing)

	close(store.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.calls)
	assert.Len(t, store.orders, 1)
}

func TestCartChangeClosesPaymentStep(t *testing.T) {
	f := scenarioFlow(&fakeStore{})
	_ = f.SelectMethod(order.PaymentCash)
	_, _ = f.BeginCapture()
	_, _ = f.Tender(dec("155"), "")

	require.NoError(t, f.Add(p(3, "Chai", "10.00")))
	assert.Equal(t, StateIdle, f.State())

	_, err := f.Place(context.Background())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCancelKeepsCart(t *testing.T) {
	f := scenarioFlow(&fakeStore{})
	_ = f.SelectMethod(order.PaymentCash)
	require.NoError(t, f.Cancel())
	assert.Equal(t, StateIdle, f.State())
	assert.Len(t, f.Snapshot().Lines, 2)
}

func TestCartObserver(t *testing.T) {
	var seen []int
	f := New(&fakeStore{}, nil, WithCartObserver(func(c *cart.Cart) { seen = append(seen, c.Quantity()) }))
	_ = f.Add(p(1, "A", "1.00"))
	_ = f.Add(p(1, "A", "1.00"))
	ok, _ := f.SetQuantity(9, 3)
	assert.False(t, ok)
	_, _ = f.Remove(1)

	assert.Equal(t, []int{1, 2, 0}, seen)
}

func TestCartObserver_SkipsStaleSnapshot(t *testing.T) {
	var seen []int
	f := New(&fakeStore{}, nil, WithCartObserver(func(c *cart.Cart) { seen = append(seen, c.Quantity()) }))
	require.NoError(t, f.Add(p(1, "A", "1.00")))
	require.NoError(t, f.Add(p(1, "A", "1.00")))
	assert.Equal(t, []int{1, 2}, seen)

	// a slow request delivering its first snapshot after the second one
	stale := cart.New()
	stale.Add(p(1, "A", "1.00"))
	f.notify(1, stale)
	assert.Equal(t, []int{1, 2}, seen)

	require.NoError(t, f.Add(p(2, "B", "1.00")))
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestQuickAmounts(t *testing.T) {
	strs := func(ds []decimal.Decimal) []string {
		out := make([]string, len(ds))
		for i, d := range ds {
			out[i] = d.String()
		}
		return out
	}
	assert.Equal(t, []string{"155", "160", "200"}, strs(QuickAmounts(dec("155"))))
	assert.Equal(t, []string{"100"}, strs(QuickAmounts(dec("100"))))
	assert.Equal(t, []string{"12.5", "20", "50", "100"}, strs(QuickAmounts(dec("12.50"))))
}

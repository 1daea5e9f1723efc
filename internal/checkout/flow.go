// Package checkout drives one payment attempt over a session's cart:
// method selection, amount capture, confirmation and order creation.
package checkout

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/caja-pos/internal/apperr"
	"github.com/MikeMC777/caja-pos/internal/cart"
	"github.com/MikeMC777/caja-pos/internal/order"
	"github.com/MikeMC777/caja-pos/internal/product"
)

type State int

const (
	StateIdle State = iota
	StateMethodSelected
	StateAmountCapture
	StateConfirmed
	StateOrderPersisted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMethodSelected:
		return "method_selected"
	case StateAmountCapture:
		return "amount_capture"
	case StateConfirmed:
		return "confirmed"
	case StateOrderPersisted:
		return "order_persisted"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// inPayment reports whether a payment step is open.
func (s State) inPayment() bool {
	return s == StateMethodSelected || s == StateAmountCapture || s == StateConfirmed
}

// OrderWriter persists an order together with its items.
type OrderWriter interface {
	Create(ctx context.Context, o *order.Order, items []order.Item) error
}

// Capture is the state of the amount-tendered step.
type Capture struct {
	Method       order.PaymentMethod `json:"method"`
	Total        decimal.Decimal     `json:"total"`
	Tendered     decimal.Decimal     `json:"tendered"`
	QuickAmounts []decimal.Decimal   `json:"quick_amounts"`
}

// Tender is a confirmed payment awaiting Place.
type Tender struct {
	Method   order.PaymentMethod `json:"method"`
	Total    decimal.Decimal     `json:"total"`
	Tendered decimal.Decimal     `json:"tendered"`
	Change   decimal.Decimal     `json:"change"`
	Note     string              `json:"note,omitempty"`
}

// Result is what a successful Place leaves behind for receipts.
type Result struct {
	Order    order.Order     `json:"order"`
	Items    []order.Item    `json:"items"`
	Tendered decimal.Decimal `json:"tendered"`
	Change   decimal.Decimal `json:"change"`
}

type Snapshot struct {
	State        string              `json:"state"`
	Method       order.PaymentMethod `json:"method,omitempty"`
	Lines        []cart.Line         `json:"lines"`
	Total        decimal.Decimal     `json:"total"`
	Quantity     int                 `json:"quantity"`
	Tendered     decimal.Decimal     `json:"tendered"`
	Note         string              `json:"note,omitempty"`
	QuickAmounts []decimal.Decimal   `json:"quick_amounts,omitempty"`
	Processing   bool                `json:"processing"`
	LastError    string              `json:"last_error,omitempty"`
	Result       *Result             `json:"result,omitempty"`
}

// ErrOrderNotSaved is shown in a snapshot after a failed Place.
const ErrOrderNotSaved = "order could not be saved"

type Option func(*Flow)

// WithCartObserver registers fn to receive a copy of the cart after every
// cart change. fn runs outside the flow's lock, one call at a time, and a
// snapshot older than one already delivered is skipped.
func WithCartObserver(fn func(*cart.Cart)) Option {
	return func(f *Flow) { f.observe = fn }
}

// Flow is the checkout state machine of a single session. Cart changes
// go through the flow so an open payment step never sees a stale total:
// changing the cart closes the step.
type Flow struct {
	mu sync.Mutex

	store   OrderWriter
	cart    *cart.Cart
	observe func(*cart.Cart)

	// seq numbers cart snapshots; observed is the last one delivered.
	seq      uint64
	obsMu    sync.Mutex
	observed uint64

	state      State
	method     order.PaymentMethod
	tendered   decimal.Decimal
	note       string
	processing bool
	result     *Result
	lastErr    error
}

func New(store OrderWriter, c *cart.Cart, opts ...Option) *Flow {
	if c == nil {
		c = cart.New()
	}
	f := &Flow{store: store, cart: c}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Busy reports whether a Place is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processing
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) busy(op string) error {
	if f.processing {
		return apperr.Conflict(op, "payment is being processed")
	}
	return nil
}

func (f *Flow) mutateCart(op string, fn func(c *cart.Cart) bool) (bool, error) {
	f.mu.Lock()
	if err := f.busy(op); err != nil {
		f.mu.Unlock()
		return false, err
	}
	changed := fn(f.cart)
	if !changed {
		f.mu.Unlock()
		return false, nil
	}
	if f.state.inPayment() {
		f.state = StateIdle
	}
	seq, snap := f.snapshotCart()
	f.mu.Unlock()

	f.notify(seq, snap)
	return true, nil
}

// snapshotCart must be called with f.mu held.
func (f *Flow) snapshotCart() (uint64, *cart.Cart) {
	f.seq++
	return f.seq, f.cart.Clone()
}

func (f *Flow) notify(seq uint64, snap *cart.Cart) {
	if f.observe == nil {
		return
	}
	f.obsMu.Lock()
	defer f.obsMu.Unlock()
	if seq <= f.observed {
		return
	}
	f.observed = seq
	f.observe(snap)
}

func (f *Flow) Add(p product.Product) error {
	_, err := f.mutateCart("checkout.add", func(c *cart.Cart) bool {
		c.Add(p)
		return true
	})
	return err
}

// SetQuantity reports false when the product is not in the cart.
func (f *Flow) SetQuantity(id int64, qty int) (bool, error) {
	return f.mutateCart("checkout.set_quantity", func(c *cart.Cart) bool {
		return c.SetQuantity(id, qty)
	})
}

func (f *Flow) Remove(id int64) (bool, error) {
	return f.mutateCart("checkout.remove", func(c *cart.Cart) bool {
		return c.Remove(id)
	})
}

func (f *Flow) ClearCart() error {
	_, err := f.mutateCart("checkout.clear", func(c *cart.Cart) bool {
		empty := c.IsEmpty()
		c.Clear()
		return !empty
	})
	return err
}

// SelectMethod opens a payment attempt. An empty cart is rejected and the
// flow stays where it was.
func (f *Flow) SelectMethod(m order.PaymentMethod) error {
	const op = "checkout.select_method"
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.busy(op); err != nil {
		return err
	}
	method, ok := order.ParsePaymentMethod(string(m))
	if !ok {
		return apperr.Validation(op, "unknown payment method")
	}
	if f.cart.IsEmpty() {
		return apperr.Validation(op, "cart is empty")
	}
	f.state = StateMethodSelected
	f.method = method
	f.tendered = decimal.Zero
	f.note = ""
	f.lastErr = nil
	return nil
}

// BeginCapture opens the amount step, pre-filled with the cart total.
func (f *Flow) BeginCapture() (Capture, error) {
	const op = "checkout.begin_capture"
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.busy(op); err != nil {
		return Capture{}, err
	}
	if f.state != StateMethodSelected && f.state != StateAmountCapture {
		return Capture{}, apperr.Conflict(op, "select a payment method first")
	}
	total := f.cart.Total()
	f.state = StateAmountCapture
	f.tendered = total
	return Capture{
		Method:       f.method,
		Total:        total,
		Tendered:     total,
		QuickAmounts: QuickAmounts(total),
	}, nil
}

// Tender records the amount received. Anything below the total keeps the
// flow in the amount step and returns a *ShortfallError.
func (f *Flow) Tender(amount decimal.Decimal, note string) (Tender, error) {
	const op = "checkout.tender"
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.busy(op); err != nil {
		return Tender{}, err
	}
	if f.state != StateAmountCapture && f.state != StateConfirmed {
		return Tender{}, apperr.Conflict(op, "payment step is not open")
	}
	if amount.IsNegative() {
		return Tender{}, apperr.Validation(op, "amount must be non-negative")
	}
	total := f.cart.Total()
	f.tendered = amount
	f.note = note
	if amount.LessThan(total) {
		f.state = StateAmountCapture
		return Tender{}, &ShortfallError{Total: total, Tendered: amount}
	}
	f.state = StateConfirmed
	return Tender{
		Method:   f.method,
		Total:    total,
		Tendered: amount,
		Change:   amount.Sub(total),
		Note:     note,
	}, nil
}

// Place writes the order and its items. It is rejected while another Place
// is in flight. On failure the cart is left untouched. Once the write has
// started, cancelling ctx does not abort it.
func (f *Flow) Place(ctx context.Context) (*Result, error) {
	const op = "checkout.place"
	f.mu.Lock()
	if err := f.busy(op); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.state != StateConfirmed {
		f.mu.Unlock()
		return nil, apperr.Conflict(op, "payment has not been confirmed")
	}
	f.processing = true
	lines := f.cart.Lines()
	method, tendered, note := f.method, f.tendered, f.note
	f.mu.Unlock()

	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.Item{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  l.Total(),
		})
	}
	o := &order.Order{
		CustomerName:  order.WalkInCustomer,
		TotalAmount:   order.SumItems(items),
		PaymentMethod: method,
		PaymentStatus: order.PaymentCompleted,
		OrderStatus:   order.StatusFulfilled,
		Note:          note,
	}
	err := f.store.Create(context.WithoutCancel(ctx), o, items)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.processing = false
	if err != nil {
		f.state = StateFailed
		f.lastErr = err
		return nil, apperr.Remote(op, err)
	}
	f.state = StateOrderPersisted
	f.lastErr = nil
	f.result = &Result{
		Order:    *o,
		Items:    items,
		Tendered: tendered,
		Change:   tendered.Sub(o.TotalAmount),
	}
	return f.resultCopy(), nil
}

// Cancel closes an open payment step. The cart is kept.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.busy("checkout.cancel"); err != nil {
		return err
	}
	if f.state.inPayment() {
		f.state = StateIdle
	}
	return nil
}

// NewInvoice clears the cart and forgets the last result.
func (f *Flow) NewInvoice() error {
	f.mu.Lock()
	if err := f.busy("checkout.new_invoice"); err != nil {
		f.mu.Unlock()
		return err
	}
	f.cart.Clear()
	f.state = StateIdle
	f.method = ""
	f.tendered = decimal.Zero
	f.note = ""
	f.result = nil
	f.lastErr = nil
	seq, snap := f.snapshotCart()
	f.mu.Unlock()

	f.notify(seq, snap)
	return nil
}

// LastResult returns the most recent successful order, if any.
func (f *Flow) LastResult() (*Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.result == nil {
		return nil, false
	}
	return f.resultCopy(), true
}

func (f *Flow) resultCopy() *Result {
	r := *f.result
	r.Items = append([]order.Item(nil), f.result.Items...)
	return &r
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := f.cart.Total()
	s := Snapshot{
		State:      f.state.String(),
		Lines:      f.cart.Lines(),
		Total:      total,
		Quantity:   f.cart.Quantity(),
		Tendered:   f.tendered,
		Note:       f.note,
		Processing: f.processing,
	}
	if f.state != StateIdle {
		s.Method = f.method
	}
	if f.state == StateAmountCapture || f.state == StateConfirmed {
		s.QuickAmounts = QuickAmounts(total)
	}
	if f.lastErr != nil {
		s.LastError = ErrOrderNotSaved
	}
	if f.result != nil {
		s.Result = f.resultCopy()
	}
	return s
}

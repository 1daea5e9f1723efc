package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// WalkInCustomer labels orders taken without a customer identity.
	WalkInCustomer = "Walk-in Customer"

	PaymentCompleted = "completed"
	StatusFulfilled  = "fulfilled"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCredit PaymentMethod = "credit"
)

var paymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentUPI, PaymentCredit}

// ParsePaymentMethod accepts the method names case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range paymentMethods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// Label is the method name as shown on screen, e.g. "Cash".
func (m PaymentMethod) Label() string {
	if m == PaymentUPI {
		return "UPI"
	}
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type Order struct {
	ID            int64           `json:"id"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	OrderStatus   string          `json:"order_status"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Item struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SumItems adds up the item totals.
func SumItems(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}

// Stats aggregates orders created in a time window.
type Stats struct {
	Orders int             `json:"orders"`
	Sales  decimal.Decimal `json:"sales"`
}

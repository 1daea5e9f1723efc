// Package cart holds the line items of one checkout session.
//
// A Cart keeps at most one line per product id and never holds a line with
// a quantity below one. Totals are exact decimals; rounding is left to
// whoever displays them. A Cart is not safe for concurrent use; its owner
// (the checkout flow) serializes access.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/caja-pos/internal/product"
)

// Line is a product snapshot taken when it was first added.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	lines []Line
}

func New() *Cart { return &Cart{} }

// FromLines rebuilds a cart, merging duplicate product ids and dropping
// lines whose quantity is not positive.
func FromLines(lines []Line) *Cart {
	c := New()
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := c.index(l.ProductID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

func (c *Cart) index(id int64) int {
	for i := range c.lines {
		if c.lines[i].ProductID == id {
			return i
		}
	}
	return -1
}

// Add increments the line for p, or appends a new line with quantity 1.
func (c *Cart) Add(p product.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  1,
	})
}

// SetQuantity replaces the quantity of an existing line; qty <= 0 removes
// it. Unknown ids are ignored and reported as false.
func (c *Cart) SetQuantity(id int64, qty int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return true
	}
	c.lines[i].Quantity = qty
	return true
}

// Remove drops the line for id and reports whether it was there.
func (c *Cart) Remove(id int64) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Quantity is the number of units across all lines.
func (c *Cart) Quantity() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Clone returns an independent copy.
func (c *Cart) Clone() *Cart { return &Cart{lines: c.Lines()} }

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lines []Line `json:"lines"`
	}{Lines: c.Lines()})
}

func (c *Cart) UnmarshalJSON(b []byte) error {
	var raw struct {
		Lines []Line `json:"lines"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.lines = FromLines(raw.Lines).lines
	return nil
}

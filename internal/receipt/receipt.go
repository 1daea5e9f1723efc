// Package receipt renders printable HTML receipts for thermal printers.
package receipt

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/MikeMC777/caja-pos/internal/order"
)

//go:embed templates/receipt.gohtml
var templateFS embed.FS

// Layout is a paper preset. Presets differ in width and font only.
type Layout struct {
	Name     string `json:"name"`
	Width    string `json:"width"`
	FontSize string `json:"font_size"`
}

var (
	Narrow = Layout{Name: "2inch", Width: "58mm", FontSize: "10px"}
	Wide   = Layout{Name: "3inch", Width: "80mm", FontSize: "12px"}
)

// LayoutByName resolves "2inch" or "3inch"; anything else yields Narrow and false.
func LayoutByName(name string) (Layout, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Narrow.Name, "58mm", "narrow":
		return Narrow, true
	case Wide.Name, "80mm", "wide":
		return Wide, true
	}
	return Narrow, false
}

// Business is the header printed on every receipt.
type Business struct {
	Name     string
	Address  string
	Phone    string
	Currency string
}

const (
	closingMessage = "Thank you for your visit!"
	dateLayout     = "02/01/2006, 15:04:05"
)

// InvoiceNumber is the bill number shown on a receipt: "SI-" + order id.
func InvoiceNumber(o order.Order) string { return fmt.Sprintf("SI-%d", o.ID) }

// FileName is the download name for a receipt.
func FileName(o order.Order) string { return "receipt-" + InvoiceNumber(o) + ".html" }

type row struct {
	Name   string
	Rate   string
	Qty    int
	Amount string
}

type view struct {
	Business  Business
	Layout    Layout
	Invoice   string
	Date      string
	Payment   string
	Rows      []row
	Subtotal  string
	Total     string
	Currency  string
	Lines     int
	Quantity  int
	Closing   string
	AutoPrint bool
}

// Generator holds the parsed template and the shop settings. It keeps no
// per-call state, so the same input always renders the same bytes.
type Generator struct {
	business Business
	loc      *time.Location
	tmpl     *template.Template
}

func NewGenerator(b Business, loc *time.Location) (*Generator, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/receipt.gohtml")
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{business: b, loc: loc, tmpl: tmpl}, nil
}

// Render produces the receipt document for o and its items.
func (g *Generator) Render(o order.Order, items []order.Item, l Layout) ([]byte, error) {
	return g.render(o, items, l, false)
}

// RenderForPrint is Render with the print dialog opened on load.
func (g *Generator) RenderForPrint(o order.Order, items []order.Item, l Layout) ([]byte, error) {
	return g.render(o, items, l, true)
}

func (g *Generator) render(o order.Order, items []order.Item, l Layout, autoPrint bool) ([]byte, error) {
	v := view{
		Business:  g.business,
		Layout:    l,
		Invoice:   InvoiceNumber(o),
		Date:      o.CreatedAt.In(g.loc).Format(dateLayout),
		Payment:   o.PaymentMethod.Label(),
		Currency:  g.business.Currency,
		Lines:     len(items),
		Closing:   closingMessage,
		AutoPrint: autoPrint,
	}
	subtotal := order.SumItems(items)
	for _, it := range items {
		v.Rows = append(v.Rows, row{
			Name:   it.ProductName,
			Rate:   it.UnitPrice.StringFixed(2),
			Qty:    it.Quantity,
			Amount: it.TotalPrice.StringFixed(2),
		})
		v.Quantity += it.Quantity
	}
	v.Subtotal = subtotal.StringFixed(2)
	// no tax or discount lines: the grand total is the order's recorded total
	v.Total = o.TotalAmount.StringFixed(2)

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "receipt.gohtml", v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

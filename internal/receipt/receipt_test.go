package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/caja-pos/internal/order"
)

func fixture() (order.Order, []order.Item) {
	o := order.Order{
		ID:            42,
		CustomerName:  order.WalkInCustomer,
		TotalAmount:   decimal.RequireFromString("155"),
		PaymentMethod: order.PaymentCash,
		CreatedAt:     time.Date(2026, 10, 14, 4, 0, 0, 0, time.UTC),
	}
	items := []order.Item{
		{ProductName: "Masala Dosa", Quantity: 2, UnitPrice: decimal.RequireFromString("45"), TotalPrice: decimal.RequireFromString("90")},
		{ProductName: "Thali <special>", Quantity: 1, UnitPrice: decimal.RequireFromString("65"), TotalPrice: decimal.RequireFromString("65")},
	}
	return o, items
}

func newGen(t *testing.T) *Generator {
	t.Helper()
	loc := time.FixedZone("IST", 5*3600+1800)
	g, err := NewGenerator(Business{Name: "Jaya Tiffin", Address: "Chhattisgarh", Phone: "7564004398", Currency: "₹"}, loc)
	require.NoError(t, err)
	return g
}

func TestRender_Content(t *testing.T) {
	g := newGen(t)
	o, items := fixture()

	out, err := g.Render(o, items, Narrow)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Jaya Tiffin")
	assert.Contains(t, html, "SI-42")
	assert.Contains(t, html, "14/10/2026, 09:30:00")
	assert.Contains(t, html, "45.00 2 90.00")
	assert.Contains(t, html, "65.00 1 65.00")
	assert.Contains(t, html, "Sub Total</span><span>₹155.00")
	assert.Contains(t, html, "TOTAL</span><span>₹155.00")
	assert.Contains(t, html, "No of Items: 2, Total Quantity: 3")
	assert.Contains(t, html, "Thank you for your visit!")
	assert.Contains(t, html, "Thali &lt;special&gt;")
	assert.NotContains(t, html, "window.print")
}

func TestRender_Idempotent(t *testing.T) {
	g := newGen(t)
	o, items := fixture()

	a, err := g.Render(o, items, Wide)
	require.NoError(t, err)
	b, err := g.Render(o, items, Wide)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRender_LayoutsDifferOnlyInPaper(t *testing.T) {
	g := newGen(t)
	o, items := fixture()

	narrow, err := g.Render(o, items, Narrow)
	require.NoError(t, err)
	wide, err := g.Render(o, items, Wide)
	require.NoError(t, err)

	assert.Contains(t, string(narrow), "58mm")
	assert.Contains(t, string(narrow), "font-size: 10px")
	assert.Contains(t, string(wide), "80mm")
	assert.Contains(t, string(wide), "font-size: 12px")

	normalized := strings.NewReplacer("80mm", "58mm", "font-size: 12px", "font-size: 10px").Replace(string(wide))
	assert.Equal(t, string(narrow), normalized)
}

func TestRenderForPrint(t *testing.T) {
	g := newGen(t)
	o, items := fixture()
	out, err := g.RenderForPrint(o, items, Narrow)
	require.NoError(t, err)
	assert.Contains(t, string(out), `onload="window.print()"`)
}

func TestNames(t *testing.T) {
	o, _ := fixture()
	assert.Equal(t, "SI-42", InvoiceNumber(o))
	assert.Equal(t, "receipt-SI-42.html", FileName(o))
}

func TestLayoutByName(t *testing.T) {
	l, ok := LayoutByName("3inch")
	assert.True(t, ok)
	assert.Equal(t, Wide, l)

	l, ok = LayoutByName("")
	assert.True(t, ok)
	assert.Equal(t, Narrow, l)

	_, ok = LayoutByName("a4")
	assert.False(t, ok)
}

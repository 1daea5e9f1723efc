package checkout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/caja-pos/internal/apperr"
)

var quickSteps = []int64{10, 50, 100}

// QuickAmounts suggests tender buttons: the exact total and the total
// rounded up to the next 10, 50 and 100. Duplicates are dropped.
func QuickAmounts(total decimal.Decimal) []decimal.Decimal {
	out := []decimal.Decimal{total}
	for _, step := range quickSteps {
		s := decimal.NewFromInt(step)
		v := total.Div(s).Ceil().Mul(s)
		if !v.Equal(out[len(out)-1]) {
			out = append(out, v)
		}
	}
	return out
}

// ShortfallError is returned when the tendered amount does not cover the total.
type ShortfallError struct {
	Total    decimal.Decimal
	Tendered decimal.Decimal
}

func (e *ShortfallError) Shortfall() decimal.Decimal { return e.Total.Sub(e.Tendered) }

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("insufficient amount: still remaining %s", e.Shortfall().StringFixed(2))
}

func (e *ShortfallError) Kind() apperr.Kind { return apperr.KindValidation }

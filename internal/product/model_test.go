package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/caja-pos/internal/apperr"
)

func TestSaveProductRequest_Valid(t *testing.T) {
	p, err := SaveProductRequest{Name: " Latte ", Price: "4.0", Category: "Coffee"}.ToProduct()
	require.NoError(t, err)

	assert.Equal(t, "Latte", p.Name)
	assert.Equal(t, "4.00", p.Price.StringFixed(2))
	assert.Equal(t, DefaultImage, p.ImageURL)
	assert.True(t, p.IsActive, "is_active omitted means active")
}

func TestSaveProductRequest_Inactive(t *testing.T) {
	off := false
	p, err := SaveProductRequest{Name: "Mocha", Price: "4.50", Category: "Coffee", ImageURL: "/m.png", IsActive: &off}.ToProduct()
	require.NoError(t, err)
	assert.False(t, p.IsActive)
	assert.Equal(t, "/m.png", p.ImageURL)
}

func TestSaveProductRequest_Invalid(t *testing.T) {
	cases := map[string]SaveProductRequest{
		"missing name":     {Price: "1.00", Category: "Coffee"},
		"missing category": {Name: "Tea", Price: "1.00"},
		"missing price":    {Name: "Tea", Category: "Tea"},
		"bad price":        {Name: "Tea", Price: "abc", Category: "Tea"},
		"negative price":   {Name: "Tea", Price: "-0.01", Category: "Tea"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := req.ToProduct()
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

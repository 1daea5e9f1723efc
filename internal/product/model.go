package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/caja-pos/internal/apperr"
)

// DefaultImage is stored when a product is saved without an image reference.
const DefaultImage = "/placeholder.svg"

type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"` // NUMERIC(10,2)
	Category  string          `json:"category"`
	ImageURL  string          `json:"image_url"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: product not found
	Error string `json:"error"`
}

// ListResponse wraps a product listing.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// category filter applied
	Category string    `json:"category,omitempty"`
	Items    []Product `json:"items"`
}

// SaveProductRequest payload for create and full update.
// swagger:model SaveProductRequest
type SaveProductRequest struct {
	Name     string `json:"name"      example:"Cappuccino"`
	Price    string `json:"price"     example:"3.50"`
	Category string `json:"category"  example:"Coffee"`
	ImageURL string `json:"image_url" example:"/placeholder.svg"`
	IsActive *bool  `json:"is_active" example:"true"`
}

// ToProduct validates the request and converts it. A missing is_active
// means active.
func (r SaveProductRequest) ToProduct() (*Product, error) {
	const op = "product.validate"

	name := strings.TrimSpace(r.Name)
	category := strings.TrimSpace(r.Category)
	if name == "" || category == "" || strings.TrimSpace(r.Price) == "" {
		return nil, apperr.Validation(op, "please fill in all required fields")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return nil, apperr.Validation(op, "price must be a decimal number")
	}
	if price.IsNegative() {
		return nil, apperr.Validation(op, "price must be non-negative")
	}
	img := strings.TrimSpace(r.ImageURL)
	if img == "" {
		img = DefaultImage
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &Product{
		Name:     name,
		Price:    price.Round(2),
		Category: category,
		ImageURL: img,
		IsActive: active,
	}, nil
}

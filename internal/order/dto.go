package order

// Detail is an order with its line items.
// swagger:model OrderDetail
type Detail struct {
	Order Order  `json:"order"`
	Items []Item `json:"items"`
}

// ListResponse represents the paginated response of orders.
// swagger:model OrderListResponse
type ListResponse struct {
	Q      string  `json:"q,omitempty"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []Order `json:"items"`
}

package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/caja-pos/internal/apperr"
	"github.com/MikeMC777/caja-pos/internal/checkout"
	"github.com/MikeMC777/caja-pos/internal/httpx"
	"github.com/MikeMC777/caja-pos/internal/order"
	"github.com/MikeMC777/caja-pos/internal/product"
	"github.com/MikeMC777/caja-pos/internal/receipt"
	"github.com/MikeMC777/caja-pos/internal/terminal"
)

func sessionFlow(c *gin.Context, terms *terminal.Registry) *checkout.Flow {
	return terms.Flow(c.Request.Context(), httpx.CurrentToken(c))
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" example:"1"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" example:"2"`
}

type methodRequest struct {
	Method string `json:"method" example:"cash"`
}

type tenderRequest struct {
	Amount string `json:"amount" example:"200.00"`
	Note   string `json:"note"   example:""`
}

type confirmResponse struct {
	Invoice     string          `json:"invoice"`
	Order       order.Order     `json:"order"`
	Items       []order.Item    `json:"items"`
	Tendered    decimal.Decimal `json:"tendered"`
	Change      decimal.Decimal `json:"change"`
	ReceiptURL  string          `json:"receipt_url"`
	DownloadURL string          `json:"download_url"`
}

// @Summary  Current cart
// @Tags     cart
// @Produce  json
// @Success  200  {object}  checkout.Snapshot
// @Router   /api/cart [get]
func getCartHandler(terms *terminal.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sessionFlow(c, terms).Snapshot())
	}
}

// @Summary      Add product to cart
// @Description  Adds one unit. A product already in the cart gets its quantity bumped.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addItemRequest  true  "Product"
// @Success      200   {object}  checkout.Snapshot
// @Failure      400   {object}  product.HTTPError
// @Failure      404   {object}  product.HTTPError
// @Failure      409   {object}  product.HTTPError
// @Router       /api/cart/items [post]
func addCartItemHandler(terms *terminal.Registry, products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "product_id is required"})
			return
		}
		p, err := products.GetByID(c.Request.Context(), req.ProductID)
		if err != nil {
			storeError(c, "cart.add", err)
			return
		}
		if !p.IsActive {
			httpx.WriteError(c, apperr.Validation("cart.add", "product is not available"))
			return
		}
		f := sessionFlow(c, terms)
		if err := f.Add(*p); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, f.Snapshot())
	}
}

// @Summary      Set line quantity
// @Description  A quantity of zero or less removes the line.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Product ID"
// @Param        body  body      setQuantityRequest  true  "Quantity"
// @Success      200   {object}  checkout.Snapshot
// @Failure      404   {object}  product.HTTPError
// @Router       /api/cart/items/{id} [put]
func setCartItemHandler(terms *terminal.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var req setQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "quantity is required"})
			return
		}
		f := sessionFlow(c, terms)
		found, err := f.SetQuantity(id, *req.Quantity)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, product.HTTPError{Error: "product is not in the cart"})
			return
		}
		c.JSON(http.StatusOK, f.Snapshot())
	}
}

// @Summary  Remove line
// @Tags     cart
// @Produce  json
// @Param    id   path      int  true  "Product ID"
// @Success  200  {object}  checkout.Snapshot
// @Failure  404  {object}  product.HTTPError
// @Router   /api/cart/items/{id} [delete]
func removeCartItemHandler(terms *terminal.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		f := sessionFlow(c, terms)
		found, err := f.Remove(id)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, product.HTTPError{Error: "product is not in the cart"})
			return
		}
		c.JSON(http.StatusOK, f.Snapshot())
	}
}

// @Summary  Clear cart
// @Tags     cart
// @Produce  json
// @Success  200  {object}  checkout.Snapshot
// @Router   /api/cart [delete]
func clearCartHandler(terms *terminal.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := sessionFlow(c, terms)
		if err := f.ClearCart(); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, f.Snapshot())
	}
}

// @Summary  Checkout state
// @Tags     checkout
// @Produce  json
// @Success  200  {object}  checkout.Snapshot
// @Router   /api/checkout [get]
func getCheckoutHandler(terms *terminal.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sessionFlow(c, terms).Snapshot())
	}
}

// @Summary  Close the payment step
// @Tags     checkout
// @Produce  json
// @Success  200  {object}  checkout.Snapshot
// @Failure  409  {object}  product.HTTPError
// @Router   /api/checkout [delete]
func cancelCheckoutHandler(terms *terminal.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := sessionFlow(c, terms)
		if err := f.Cancel(); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, f.Snapshot())
	}
}

// @Summary      Choose payment method
// @Description  Opens the amount step pre-filled with the cart total.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body      methodRequest  true  "cash, card, upi or credit"
// @Success      200   {object}  checkout.Capture
// @Failure      400   {object}  product.HTTPError
// @Failure      409   {object}  product.HTTPError
// @Router       /api/checkout/method [post]
func selectMethodHandler(terms *terminal.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req methodRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid json"})
			return
		}
		m, ok := order.ParsePaymentMethod(req.Method)
		if !ok {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "unknown payment method"})
			return
		}
		f := sessionFlow(c, terms)
		if err := f.SelectMethod(m); err != nil {
			httpx.WriteError(c, err)
			return
		}
		capture, err := f.BeginCapture()
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, capture)
	}
}

// @Summary      Enter amount received
// @Description  Amounts below the total answer 422 with the shortfall.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body      tenderRequest  true  "Amount"
// @Success      200   {object}  checkout.Tender
// @Failure      400   {object}  product.HTTPError
// @Failure      409   {object}  product.HTTPError
// @Failure      422   {object}  product.HTTPError
// @Router       /api/checkout/tender [post]
func tenderHandler(terms *terminal.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tenderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid json"})
			return
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
		if err != nil {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "amount must be a decimal number"})
			return
		}
		t, err := sessionFlow(c, terms).Tender(amount, strings.TrimSpace(req.Note))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// @Summary      Place order
// @Description  Writes the order and its items in one transaction. The cart is kept for the receipt.
// @Tags         checkout
// @Produce      json
// @Success      201  {object}  confirmResponse
// @Failure      409  {object}  product.HTTPError
// @Failure      502  {object}  product.HTTPError
// @Router       /api/checkout/confirm [post]
func confirmHandler(terms *terminal.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := sessionFlow(c, terms).Place(c.Request.Context())
		if err != nil {
			if apperr.KindOf(err) == apperr.KindRemote {
				logger.Error("order failed", zap.String("rid", c.GetString("rid")), zap.Error(errors.Unwrap(err)))
			}
			httpx.WriteError(c, err)
			return
		}
		logger.Info("order placed",
			zap.Int64("order_id", res.Order.ID),
			zap.String("total", res.Order.TotalAmount.StringFixed(2)),
			zap.String("method", string(res.Order.PaymentMethod)),
			zap.Int("items", len(res.Items)),
		)
		base := "/api/orders/" + strconv.FormatInt(res.Order.ID, 10) + "/receipt"
		c.JSON(http.StatusCreated, confirmResponse{
			Invoice:     receipt.InvoiceNumber(res.Order),
			Order:       res.Order,
			Items:       res.Items,
			Tendered:    res.Tendered,
			Change:      res.Change,
			ReceiptURL:  base,
			DownloadURL: base + "/download",
		})
	}
}

// @Summary  Start a new invoice
// @Tags     checkout
// @Produce  json
// @Success  200  {object}  checkout.Snapshot
// @Failure  409  {object}  product.HTTPError
// @Router   /api/checkout/new-invoice [post]
func newInvoiceHandler(terms *terminal.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := sessionFlow(c, terms)
		if err := f.NewInvoice(); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, f.Snapshot())
	}
}

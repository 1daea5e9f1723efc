package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/caja-pos/internal/httpx"
	"github.com/MikeMC777/caja-pos/internal/order"
	"github.com/MikeMC777/caja-pos/internal/product"
	"github.com/MikeMC777/caja-pos/internal/receipt"
)

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: key + " must be an integer"})
		return 0, false
	}
	return n, true
}

// @Summary      Order history
// @Description  Newest first. q matches the bill id or the customer name.
// @Tags         orders
// @Produce      json
// @Param        q       query     string  false  "search"
// @Param        limit   query     int     false  "default 20, max 100"
// @Param        offset  query     int     false  "offset"
// @Success      200     {object}  order.ListResponse
// @Failure      400     {object}  product.HTTPError
// @Router       /api/orders [get]
func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := intQuery(c, "limit")
		if !ok {
			return
		}
		offset, ok := intQuery(c, "offset")
		if !ok {
			return
		}
		q := order.NormalizeQuery(order.Query{Q: c.Query("q"), Limit: limit, Offset: offset})
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			storeError(c, "order.list", err)
			return
		}
		c.JSON(http.StatusOK, order.ListResponse{Q: q.Q, Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

// @Summary  Order with items
// @Tags     orders
// @Produce  json
// @Param    id   path      int  true  "Order ID"
// @Success  200  {object}  order.Detail
// @Failure  404  {object}  product.HTTPError
// @Router   /api/orders/{id} [get]
func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, ok := loadOrder(c, repo)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// @Summary  Order items
// @Tags     orders
// @Produce  json
// @Param    id   path      int  true  "Order ID"
// @Success  200  {array}   order.Item
// @Failure  404  {object}  product.HTTPError
// @Router   /api/orders/{id}/items [get]
func getOrderItemsHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, ok := loadOrder(c, repo)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, d.Items)
	}
}

func loadOrder(c *gin.Context, repo order.Repository) (*order.Detail, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}
	o, err := repo.GetByID(c.Request.Context(), id)
	if err != nil {
		storeError(c, "order.get", err)
		return nil, false
	}
	items, err := repo.GetItems(c.Request.Context(), id)
	if err != nil {
		storeError(c, "order.items", err)
		return nil, false
	}
	return &order.Detail{Order: *o, Items: items}, true
}

// @Summary      Receipt
// @Description  HTML receipt for a thermal printer. print=true opens the print dialog on load.
// @Tags         orders
// @Produce      html
// @Param        id      path      int     true   "Order ID"
// @Param        layout  query     string  false  "2inch or 3inch"
// @Param        print   query     bool    false  "auto print"
// @Success      200     {string}  string
// @Failure      400     {object}  product.HTTPError
// @Failure      404     {object}  product.HTTPError
// @Router       /api/orders/{id}/receipt [get]
// @Router       /api/orders/{id}/receipt/download [get]
func receiptHandler(repo order.Repository, gen *receipt.Generator, download bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		layout, ok := receipt.LayoutByName(c.Query("layout"))
		if !ok {
			c.JSON(http.StatusBadRequest, product.HTTPError{Error: "layout must be 2inch or 3inch"})
			return
		}
		d, ok := loadOrder(c, repo)
		if !ok {
			return
		}

		render := gen.Render
		if printNow, _ := strconv.ParseBool(c.Query("print")); printNow {
			render = gen.RenderForPrint
		}
		body, err := render(d.Order, d.Items, layout)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, product.HTTPError{Error: "could not render receipt"})
			return
		}
		if download {
			c.Header("Content-Disposition", `attachment; filename="`+receipt.FileName(d.Order)+`"`)
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", body)
	}
}

// @Summary  Dashboard
// @Tags     reports
// @Produce  json
// @Success  200  {object}  report.Summary
// @Failure  502  {object}  product.HTTPError
// @Router   /api/dashboard [get]
func dashboardHandler(d summarizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := d.Summary(c.Request.Context())
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

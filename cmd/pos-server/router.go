package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MikeMC777/caja-pos/docs"
	"github.com/MikeMC777/caja-pos/internal/apperr"
	"github.com/MikeMC777/caja-pos/internal/httpx"
	"github.com/MikeMC777/caja-pos/internal/identity"
	"github.com/MikeMC777/caja-pos/internal/order"
	"github.com/MikeMC777/caja-pos/internal/product"
	"github.com/MikeMC777/caja-pos/internal/receipt"
	"github.com/MikeMC777/caja-pos/internal/report"
	"github.com/MikeMC777/caja-pos/internal/terminal"
)

// authService is the part of identity.Client the server uses.
type authService interface {
	httpx.Resolver
	Authenticate(ctx context.Context, email, password string) (*identity.LoginResult, error)
	Revoke(ctx context.Context, token string) error
}

type summarizer interface {
	Summary(ctx context.Context) (report.Summary, error)
}

type server struct {
	auth       authService
	products   product.Repository
	orders     order.Repository
	terminals  *terminal.Registry
	receipts   *receipt.Generator
	dashboard  summarizer
	sessionTTL time.Duration
	logger     *zap.Logger
}

func newRouter(s server) *gin.Engine {
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(s.logger))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET(httpx.LoginPath, loginPageHandler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/login", loginHandler(s.auth, s.sessionTTL))
	api.POST("/logout", logoutHandler(s.auth, s.terminals, s.logger))

	user := api.Group("", httpx.Gate(s.auth, false))
	{
		user.GET("/me", meHandler())
		user.GET("/products", listProductsHandler(s.products))

		user.GET("/cart", getCartHandler(s.terminals))
		user.DELETE("/cart", clearCartHandler(s.terminals))
		user.POST("/cart/items", addCartItemHandler(s.terminals, s.products))
		user.PUT("/cart/items/:id", setCartItemHandler(s.terminals))
		user.DELETE("/cart/items/:id", removeCartItemHandler(s.terminals))

		user.GET("/checkout", getCheckoutHandler(s.terminals))
		user.DELETE("/checkout", cancelCheckoutHandler(s.terminals))
		user.POST("/checkout/method", selectMethodHandler(s.terminals))
		user.POST("/checkout/tender", tenderHandler(s.terminals))
		user.POST("/checkout/confirm", confirmHandler(s.terminals, s.logger))
		user.POST("/checkout/new-invoice", newInvoiceHandler(s.terminals))

		user.GET("/orders", listOrdersHandler(s.orders))
		user.GET("/orders/:id", getOrderHandler(s.orders))
		user.GET("/orders/:id/items", getOrderItemsHandler(s.orders))
		user.GET("/orders/:id/receipt", receiptHandler(s.orders, s.receipts, false))
		user.GET("/orders/:id/receipt/download", receiptHandler(s.orders, s.receipts, true))

		user.GET("/dashboard", dashboardHandler(s.dashboard))
	}

	admin := api.Group("/admin", httpx.Gate(s.auth, true))
	{
		admin.GET("/products", adminListProductsHandler(s.products))
		admin.POST("/products", createProductHandler(s.products))
		admin.PUT("/products/:id", updateProductHandler(s.products))
		admin.DELETE("/products/:id", deleteProductHandler(s.products))
	}
	return r
}

// loginPageHandler is where the gate sends browsers without a session.
func loginPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"error": "login required", "login": "POST /api/login"})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// storeError answers 404 for not-found sentinels and 502 for anything else
// the store reports.
func storeError(c *gin.Context, op string, err error) {
	if errors.Is(err, product.ErrNotFound) || errors.Is(err, order.ErrNotFound) {
		c.JSON(http.StatusNotFound, product.HTTPError{Error: err.Error()})
		return
	}
	httpx.WriteError(c, apperr.Remote(op, err))
}

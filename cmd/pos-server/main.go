package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MikeMC777/caja-pos/internal/config"
	"github.com/MikeMC777/caja-pos/internal/identity"
	"github.com/MikeMC777/caja-pos/internal/logging"
	"github.com/MikeMC777/caja-pos/internal/order"
	"github.com/MikeMC777/caja-pos/internal/product"
	"github.com/MikeMC777/caja-pos/internal/receipt"
	"github.com/MikeMC777/caja-pos/internal/report"
	"github.com/MikeMC777/caja-pos/internal/terminal"
)

// @title        Caja POS API
// @version      1.0
// @description  Counter point-of-sale for a café: catalog, cart, checkout and receipts.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	cfg.Log(logger)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("pgxpool", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("postgres ping", zap.Error(err))
	}

	auth, conn, err := identity.Dial(cfg.IdentitySvcAddr)
	if err != nil {
		logger.Fatal("identity dial", zap.Error(err))
	}
	defer conn.Close()

	var persist terminal.Persister
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, carts stay in memory", zap.Error(err))
		} else {
			persist = terminal.NewRedisPersister(rdb, cfg.SessionTTL)
		}
	}

	loc, _ := cfg.Location()
	gen, err := receipt.NewGenerator(receipt.Business{
		Name:     cfg.BusinessName,
		Address:  cfg.BusinessAddress,
		Phone:    cfg.BusinessPhone,
		Currency: cfg.CurrencySymbol,
	}, loc)
	if err != nil {
		logger.Fatal("receipt template", zap.Error(err))
	}

	products := product.NewPGRepo(pool)
	orders := order.NewPGRepo(pool)
	r := newRouter(server{
		auth:       auth,
		products:   products,
		orders:     orders,
		terminals:  terminal.NewRegistry(orders, persist, logger, terminal.WithIdleTimeout(cfg.SessionTTL)),
		receipts:   gen,
		dashboard:  report.NewDashboard(orders, products, loc),
		sessionTTL: cfg.SessionTTL,
		logger:     logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("pos-server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

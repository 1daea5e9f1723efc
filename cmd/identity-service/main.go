package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/MikeMC777/caja-pos/internal/config"
	"github.com/MikeMC777/caja-pos/internal/identity"
	"github.com/MikeMC777/caja-pos/internal/logging"
)

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

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("pgxpool", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("postgres ping", zap.Error(err))
	}

	svc := identity.NewService(
		identity.NewUserPGRepo(pool),
		identity.NewSessionPGRepo(pool),
		cfg.SessionTTL,
		logger,
	)

	l, err := net.Listen("tcp", cfg.IdentityListenAddr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
	srv := grpc.NewServer(grpc.UnaryInterceptor(identity.UnaryLogger(logger)))
	identity.Register(srv, svc)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("identity-service listening", zap.String("addr", cfg.IdentityListenAddr))
		serveErr <- srv.Serve(l)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutting down")
		srv.GracefulStop()
	case err := <-serveErr:
		logger.Fatal("serve", zap.Error(err))
	}
}

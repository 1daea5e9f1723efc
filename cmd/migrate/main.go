package main

import (
	"context"
	_ "embed"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MikeMC777/caja-pos/internal/access"
	"github.com/MikeMC777/caja-pos/internal/config"
	"github.com/MikeMC777/caja-pos/internal/identity"
	"github.com/MikeMC777/caja-pos/internal/logging"
	"github.com/MikeMC777/caja-pos/internal/product"
)

//go:embed schema.sql
var schema string

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

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("pgxpool", zap.Error(err))
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		logger.Fatal("schema", zap.Error(err))
	}
	logger.Info("schema ready")

	if err := seedCatalog(ctx, product.NewPGRepo(pool), logger); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
	if cfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, identity.NewUserPGRepo(pool), cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
			logger.Fatal("admin", zap.Error(err))
		}
	}
}

func seedCatalog(ctx context.Context, repo product.Repository, logger *zap.Logger) error {
	existing, err := repo.List(ctx, product.Query{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("catalog already has products, skipping seed", zap.Int("count", len(existing)))
		return nil
	}
	items, err := seedProducts()
	if err != nil {
		return err
	}
	for _, p := range items {
		if err := repo.Create(ctx, p); err != nil {
			return err
		}
	}
	logger.Info("catalog seeded", zap.Int("count", len(items)))
	return nil
}

// ensureAdmin creates the admin account, or promotes it if it already exists.
func ensureAdmin(ctx context.Context, users identity.UserRepository, email, password string, logger *zap.Logger) error {
	email = identity.NormalizeEmail(email)
	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role != access.RoleAdmin {
			if err := users.UpdateRole(ctx, u.ID, access.RoleAdmin); err != nil {
				return err
			}
		}
		logger.Info("admin present", zap.String("email", email))
		return nil
	case !errors.Is(err, identity.ErrNotFound):
		return err
	}

	if password == "" {
		return errors.New("ADMIN_PASSWORD is required to create the admin user")
	}
	hash, err := identity.HashPassword(password)
	if err != nil {
		return err
	}
	err = users.Create(ctx, &identity.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Administrator",
		Role:         access.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	logger.Info("admin created", zap.String("email", email))
	return nil
}

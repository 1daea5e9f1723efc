package order

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to POSTGRES_DSN and loads the schema into a throwaway
// Postgres schema that is dropped when the test ends.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()

	admin, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	name := fmt.Sprintf("order_repo_test_%d", time.Now().UnixNano())
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+name+" CASCADE")
		_ = admin.Close(context.Background())
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = name
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile(filepath.Join("..", "..", "cmd", "migrate", "schema.sql"))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(ddl))
	require.NoError(t, err)
	return pool
}

func newOrder(items []Item) *Order {
	return &Order{
		CustomerName:  WalkInCustomer,
		TotalAmount:   SumItems(items),
		PaymentMethod: PaymentCash,
		PaymentStatus: PaymentCompleted,
		OrderStatus:   StatusFulfilled,
	}
}

func TestPGRepo_CreateIsAtomic(t *testing.T) {
	pool := testPool(t)
	repo := NewPGRepo(pool)
	ctx := context.Background()

	var dosa int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO products (name, price, category) VALUES ('Masala Dosa', 45, 'Dosa') RETURNING id`,
	).Scan(&dosa))
	price := decimal.RequireFromString("45.00")

	// the second item violates quantity > 0
	bad := []Item{
		{ProductID: dosa, ProductName: "Masala Dosa", Quantity: 2, UnitPrice: price, TotalPrice: price.Mul(decimal.NewFromInt(2))},
		{ProductID: dosa, ProductName: "Masala Dosa", Quantity: 0, UnitPrice: price, TotalPrice: decimal.Zero},
	}
	require.Error(t, repo.Create(ctx, newOrder(bad), bad))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "a failed item must not leave an order behind")
	var items int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM order_items`).Scan(&items))
	assert.Zero(t, items)

	good := bad[:1]
	o := newOrder(good)
	require.NoError(t, repo.Create(ctx, o, good))
	assert.NotZero(t, o.ID)
	assert.Equal(t, o.ID, good[0].OrderID)

	got, err := repo.GetItems(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Quantity)
	assert.True(t, got[0].TotalPrice.Equal(decimal.RequireFromString("90")))

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

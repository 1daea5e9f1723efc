package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("order not found")
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	// Create stores the order and its items as one unit and fills in the
	// assigned ids and timestamps.
	Create(ctx context.Context, o *Order, items []Item) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetItems(ctx context.Context, orderID int64) ([]Item, error)
	List(ctx context.Context, q Query) ([]Order, error)
	Stats(ctx context.Context, from, to time.Time) (Stats, error)
	Count(ctx context.Context) (int, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// NormalizeQuery clamps paging to the defaults used by List.
func NormalizeQuery(q Query) Query {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (customer_name, total_amount, payment_method, payment_status, order_status, note, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`, o.CustomerName, o.TotalAmount.StringFixed(2), string(o.PaymentMethod), o.PaymentStatus, o.OrderStatus, o.Note,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	b := &pgx.Batch{}
	for _, it := range items {
		b.Queue(`
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,NOW())
			RETURNING id, created_at
		`, o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice.StringFixed(2), it.TotalPrice.StringFixed(2))
	}
	br := tx.SendBatch(ctx, b)
	for i := range items {
		items[i].OrderID = o.ID
		if err := br.QueryRow().Scan(&items[i].ID, &items[i].CreatedAt); err != nil {
			_ = br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const orderColumns = `id, customer_name, total_amount::text, payment_method, payment_status, order_status, COALESCE(note,''), created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		total  string
		method string
	)
	if err := row.Scan(&o.ID, &o.CustomerName, &total, &method, &o.PaymentStatus, &o.OrderStatus, &o.Note, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	o.TotalAmount = d
	o.PaymentMethod = PaymentMethod(method)
	return &o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// List returns orders newest first. Q matches the id or the customer name.
func (r *PGRepo) List(ctx context.Context, q Query) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = NormalizeQuery(q)
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1 = '' OR id::text LIKE '%'||$1||'%' OR customer_name ILIKE '%'||$1||'%')
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, q.Q, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetItems(ctx context.Context, orderID int64) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, COALESCE(product_id,0), product_name, quantity, unit_price::text, total_price::text, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var (
			it          Item
			unit, total string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &unit, &total, &it.CreatedAt); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, err
		}
		if it.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Stats counts every order in [from, to) and sums the completed ones.
func (r *PGRepo) Stats(ctx context.Context, from, to time.Time) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		s     Stats
		sales string
	)
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_amount) FILTER (WHERE payment_status = $3), 0)::text
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, from, to, PaymentCompleted).Scan(&s.Orders, &sales)
	if err != nil {
		return Stats{}, err
	}
	if s.Sales, err = decimal.NewFromString(sales); err != nil {
		return Stats{}, err
	}
	return s, nil
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

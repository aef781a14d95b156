package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/wichananm65/jersey-shop-backend/internal/database"
	"github.com/wichananm65/jersey-shop-backend/internal/pricing"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	orderColumns = `id, user_id, subtotal, shipping_cost, discount, total, shipping_method, payment_method,
		address_snapshot, promo_code_used, status, created_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (id, user_id, subtotal, shipping_cost, discount, total, shipping_method, payment_method,
			address_snapshot, promo_code_used, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	insertOrderLineQuery = `
		INSERT INTO order_items (id, order_id, product_id, variant_id, product_title, size, quantity, price_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	getOrderQuery         = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersByUserQuery = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	listOrdersQuery       = `SELECT ` + orderColumns + ` FROM orders WHERE ($1::text = '' OR status = $1) ORDER BY created_at DESC`
	recentOrdersQuery     = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`

	linesForOrdersQuery = `
		SELECT id, order_id, product_id, variant_id, product_title, size, quantity, price_snapshot
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, product_title, size
	`
	updateStatusQuery = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	orderExistsQuery  = `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`
	summaryQuery      = `
		SELECT COUNT(*), COALESCE(SUM(total) FILTER (WHERE status <> 'cancelled'), 0)
		FROM orders
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateWithLines(ctx context.Context, o Order) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, insertOrderQuery,
			o.ID, o.UserID, o.Subtotal, o.ShippingCost, o.Discount, o.Total,
			string(o.ShippingMethod), string(o.PaymentMethod), o.Address,
			sql.NullString{String: o.PromoCode, Valid: o.PromoCode != ""},
			string(o.Status), o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for _, l := range o.Lines {
			_, err := tx.ExecContext(ctx, insertOrderLineQuery,
				l.ID, o.ID, l.ProductID, l.VariantID, l.Title, l.Size, l.Quantity, l.UnitPrice)
			if err != nil {
				return fmt.Errorf("insert order line %s: %w", l.VariantID, err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
	if err != nil {
		return Order{}, err
	}
	orders := []Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, true, listOrdersByUserQuery, userID)
}

func (r *PostgresRepository) List(ctx context.Context, status Status) ([]Order, error) {
	return r.list(ctx, true, listOrdersQuery, string(status))
}

func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]Order, error) {
	return r.list(ctx, false, recentOrdersQuery, limit)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, status Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx, updateStatusQuery, id, string(status), at, string(from))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, orderExistsQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusChanged
}

func (r *PostgresRepository) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	if err := r.db.QueryRowContext(ctx, summaryQuery).Scan(&s.Count, &s.Revenue); err != nil {
		return Summary{}, fmt.Errorf("order summary: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) list(ctx context.Context, withLines bool, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if withLines {
		if err := r.attachLines(ctx, orders); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// attachLines loads lines for all orders in one query.
func (r *PostgresRepository) attachLines(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	pos := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		pos[o.ID] = i
		orders[i].Lines = []Line{}
	}

	rows, err := r.db.QueryContext(ctx, linesForOrdersQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l       Line
			orderID string
		)
		if err := rows.Scan(&l.ID, &orderID, &l.ProductID, &l.VariantID, &l.Title, &l.Size, &l.Quantity, &l.UnitPrice); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		if i, ok := pos[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o        Order
		shipping string
		payment  string
		status   string
		promo    sql.NullString
	)
	err := row.Scan(&o.ID, &o.UserID, &o.Subtotal, &o.ShippingCost, &o.Discount, &o.Total,
		&shipping, &payment, &o.Address, &promo, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	o.ShippingMethod = pricing.ShippingMethod(shipping)
	o.PaymentMethod = PaymentMethod(payment)
	o.Status = Status(status)
	o.PromoCode = promo.String
	return o, nil
}

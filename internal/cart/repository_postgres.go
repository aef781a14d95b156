package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wichananm65/jersey-shop-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartIDQuery = `SELECT id FROM carts WHERE user_id = $1`

	// ON CONFLICT keeps the one-cart-per-account rule when two requests
	// race to create it.
	createCartQuery = `
		INSERT INTO carts (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`
	listCartLinesQuery = `
		SELECT ci.variant_id, v.product_id, p.title, v.size, ci.price_snapshot, ci.quantity,
		       COALESCE((SELECT pi.url FROM product_images pi WHERE pi.product_id = p.id ORDER BY pi.position LIMIT 1), ''),
		       p.slug
		FROM cart_items ci
		JOIN product_variants v ON v.id = ci.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at, ci.variant_id
	`
	upsertLineQuery = `
		INSERT INTO cart_items (cart_id, variant_id, quantity, price_snapshot)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, variant_id) DO UPDATE SET quantity = EXCLUDED.quantity
	`
	sumLineQuery = `
		INSERT INTO cart_items (cart_id, variant_id, quantity, price_snapshot)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, variant_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`
	deleteLineQuery = `DELETE FROM cart_items WHERE cart_id = $1 AND variant_id = $2`
	clearLinesQuery = `DELETE FROM cart_items WHERE cart_id = $1`
	touchCartQuery  = `UPDATE carts SET updated_at = NOW() WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetCart(ctx context.Context, userID string) (Cart, error) {
	c := Cart{UserID: userID, Lines: []Line{}}
	if err := r.db.QueryRowContext(ctx, getCartIDQuery, userID).Scan(&c.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("get cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, listCartLinesQuery, c.ID)
	if err != nil {
		return Cart{}, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.VariantID, &l.ProductID, &l.Title, &l.Size, &l.UnitPrice, &l.Quantity, &l.Image, &l.Slug); err != nil {
			return Cart{}, fmt.Errorf("scan cart line: %w", err)
		}
		c.Lines = append(c.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Cart{}, fmt.Errorf("iterate cart lines: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) CreateCart(ctx context.Context, userID string) (Cart, error) {
	c := Cart{UserID: userID, Lines: []Line{}}
	if err := r.db.QueryRowContext(ctx, createCartQuery, uuid.NewString(), userID).Scan(&c.ID); err != nil {
		return Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) UpsertLine(ctx context.Context, cartID string, line Line) error {
	if _, err := r.db.ExecContext(ctx, upsertLineQuery, cartID, line.VariantID, line.Quantity, line.UnitPrice); err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteLine(ctx context.Context, cartID, variantID string) error {
	if _, err := r.db.ExecContext(ctx, deleteLineQuery, cartID, variantID); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ClearLines(ctx context.Context, cartID string) error {
	if _, err := r.db.ExecContext(ctx, clearLinesQuery, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MergeLines(ctx context.Context, cartID string, lines []Line, policy MergePolicy) error {
	q := upsertLineQuery
	if policy == MergeSum {
		q = sumLineQuery
	}
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, l := range lines {
			if _, err := tx.ExecContext(ctx, q, cartID, l.VariantID, l.Quantity, l.UnitPrice); err != nil {
				return fmt.Errorf("merge line %s: %w", l.VariantID, err)
			}
		}
		if _, err := tx.ExecContext(ctx, touchCartQuery, cartID); err != nil {
			return fmt.Errorf("touch cart: %w", err)
		}
		return nil
	})
}

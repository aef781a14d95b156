package promo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/jersey-shop-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	promoColumns = `id, code, type, value, min_order, expires_at, is_active, created_at`

	listPromosQuery     = `SELECT ` + promoColumns + ` FROM promo_codes ORDER BY created_at DESC`
	getPromoByIDQuery   = `SELECT ` + promoColumns + ` FROM promo_codes WHERE id = $1`
	getPromoByCodeQuery = `SELECT ` + promoColumns + ` FROM promo_codes WHERE code = $1`

	insertPromoQuery = `
		INSERT INTO promo_codes (id, code, type, value, min_order, expires_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	updatePromoQuery = `
		UPDATE promo_codes
		SET code = $2, type = $3, value = $4, min_order = $5, expires_at = $6, is_active = $7
		WHERE id = $1
	`
	deletePromoQuery = `DELETE FROM promo_codes WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Promotion, error) {
	rows, err := r.db.QueryContext(ctx, listPromosQuery)
	if err != nil {
		return nil, fmt.Errorf("list promos: %w", err)
	}
	defer rows.Close()

	out := make([]Promotion, 0)
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Promotion, error) {
	return scanPromotion(r.db.QueryRowContext(ctx, getPromoByIDQuery, id))
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (Promotion, error) {
	return scanPromotion(r.db.QueryRowContext(ctx, getPromoByCodeQuery, code))
}

func (r *PostgresRepository) Create(ctx context.Context, p Promotion) (Promotion, error) {
	_, err := r.db.ExecContext(ctx, insertPromoQuery,
		p.ID, p.Code, string(p.Kind), p.Value, nullDecimal(p.MinOrder), p.ExpiresAt, p.Active, p.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Promotion{}, ErrCodeExists
		}
		return Promotion{}, fmt.Errorf("insert promo: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Promotion) (Promotion, error) {
	res, err := r.db.ExecContext(ctx, updatePromoQuery,
		p.ID, p.Code, string(p.Kind), p.Value, nullDecimal(p.MinOrder), p.ExpiresAt, p.Active)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Promotion{}, ErrCodeExists
		}
		return Promotion{}, fmt.Errorf("update promo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Promotion{}, ErrNotFound
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deletePromoQuery, id)
	if err != nil {
		return fmt.Errorf("delete promo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPromotion(row rowScanner) (Promotion, error) {
	var (
		p        Promotion
		kind     string
		minOrder decimal.NullDecimal
		expires  sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Code, &kind, &p.Value, &minOrder, &expires, &p.Active, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Promotion{}, ErrNotFound
		}
		return Promotion{}, fmt.Errorf("scan promo: %w", err)
	}
	p.Kind = Kind(kind)
	if minOrder.Valid {
		p.MinOrder = &minOrder.Decimal
	}
	if expires.Valid {
		p.ExpiresAt = &expires.Time
	}
	return p, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

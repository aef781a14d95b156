package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wichananm65/jersey-shop-backend/internal/database"
)

// PostgresRepository stores addresses in the `addresses` table; every
// query is scoped by user_id.
type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	addressColumns = `id, user_id, full_name, phone, address_line1, address_line2, city, state, postal_code, country,
		label, is_default, created_at`

	listAddressesQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY created_at DESC`
	getAddressQuery    = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND id = $2`
	insertAddressQuery = `
		INSERT INTO addresses (id, user_id, full_name, phone, address_line1, address_line2, city, state, postal_code,
			country, label, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	updateAddressQuery = `
		UPDATE addresses
		SET full_name = $3, phone = $4, address_line1 = $5, address_line2 = $6, city = $7, state = $8,
			postal_code = $9, country = $10, label = $11, is_default = $12
		WHERE user_id = $1 AND id = $2
	`
	clearDefaultQuery  = `UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2 AND is_default`
	setDefaultQuery    = `UPDATE addresses SET is_default = TRUE WHERE user_id = $1 AND id = $2`
	deleteAddressQuery = `DELETE FROM addresses WHERE user_id = $1 AND id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, listAddressesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (Address, error) {
	return scanAddress(r.db.QueryRowContext(ctx, getAddressQuery, userID, id))
}

func (r *PostgresRepository) Create(ctx context.Context, a Address) (Address, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if a.IsDefault {
			if _, err := tx.ExecContext(ctx, clearDefaultQuery, a.UserID, a.ID); err != nil {
				return fmt.Errorf("clear default address: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx, insertAddressQuery,
			a.ID, a.UserID, a.FullName, nullString(a.Phone), a.Line1, nullString(a.Line2), a.City, nullString(a.State),
			a.PostalCode, a.Country, nullString(a.Label), a.IsDefault, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert address: %w", err)
		}
		return nil
	})
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a Address) (Address, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if a.IsDefault {
			if _, err := tx.ExecContext(ctx, clearDefaultQuery, a.UserID, a.ID); err != nil {
				return fmt.Errorf("clear default address: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx, updateAddressQuery,
			a.UserID, a.ID, a.FullName, nullString(a.Phone), a.Line1, nullString(a.Line2), a.City, nullString(a.State),
			a.PostalCode, a.Country, nullString(a.Label), a.IsDefault)
		if err != nil {
			return fmt.Errorf("update address: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) SetDefault(ctx context.Context, userID, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, clearDefaultQuery, userID, id); err != nil {
			return fmt.Errorf("clear default address: %w", err)
		}
		res, err := tx.ExecContext(ctx, setDefaultQuery, userID, id)
		if err != nil {
			return fmt.Errorf("set default address: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, deleteAddressQuery, userID, id)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAddress(row rowScanner) (Address, error) {
	var (
		a                          Address
		phone, line2, state, label sql.NullString
	)
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &phone, &a.Line1, &line2, &a.City, &state, &a.PostalCode,
		&a.Country, &label, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Address{}, ErrNotFound
		}
		return Address{}, fmt.Errorf("scan address: %w", err)
	}
	a.Phone = phone.String
	a.Line2 = line2.String
	a.State = state.String
	a.Label = label.String
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

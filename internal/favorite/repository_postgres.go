package favorite

import (
	"context"
	"database/sql"
	"time"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listFavoritesQuery = `
		SELECT product_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at, product_id
	`
	addFavoriteQuery = `
		INSERT INTO favorites (user_id, product_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`
	removeFavoriteQuery = `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, listFavoritesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ProductID, &e.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Add(ctx context.Context, userID, productID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, addFavoriteQuery, userID, productID, at)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyFavorite
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, productID string) error {
	res, err := r.db.ExecContext(ctx, removeFavoriteQuery, userID, productID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFavorite
	}
	return nil
}

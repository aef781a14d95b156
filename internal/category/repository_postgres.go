package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wichananm65/jersey-shop-backend/internal/database"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	categoryColumns = `id, name, slug, type, parent_id, image_url, created_at`

	listCategoriesQuery = `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE ($1 = '' OR type = $1)
		ORDER BY type, name
		LIMIT $2
	`
	getCategoryByIDQuery   = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	getCategoryBySlugQuery = `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	insertCategoryQuery    = `
		INSERT INTO categories (id, name, slug, type, parent_id, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	updateCategoryQuery = `
		UPDATE categories SET name = $2, slug = $3, type = $4, parent_id = $5, image_url = $6
		WHERE id = $1
	`
	deleteCategoryQuery = `DELETE FROM categories WHERE id = $1`
	countCategoryQuery  = `SELECT COUNT(*) FROM categories`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, typ Type, limit int) ([]Category, error) {
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery, string(typ), lim)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx, getCategoryByIDQuery, id))
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (Category, error) {
	return scanCategory(r.db.QueryRowContext(ctx, getCategoryBySlugQuery, slug))
}

func (r *PostgresRepository) Create(ctx context.Context, c Category) (Category, error) {
	_, err := r.db.ExecContext(ctx, insertCategoryQuery,
		c.ID, c.Name, c.Slug, string(c.Type), nullRef(c.ParentID), nullRef(c.ImageURL), c.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Category{}, ErrSlugExists
		}
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c Category) (Category, error) {
	res, err := r.db.ExecContext(ctx, updateCategoryQuery,
		c.ID, c.Name, c.Slug, string(c.Type), nullRef(c.ParentID), nullRef(c.ImageURL))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Category{}, ErrSlugExists
		}
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteCategoryQuery, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countCategoryQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func scanCategory(row rowScanner) (Category, error) {
	var (
		c        Category
		typ      string
		parentID sql.NullString
		image    sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &typ, &parentID, &image, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, fmt.Errorf("scan category: %w", err)
	}
	c.Type = Type(typ)
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	if image.Valid {
		c.ImageURL = &image.String
	}
	return c, nil
}

func nullRef(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

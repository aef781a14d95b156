package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wichananm65/jersey-shop-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `id, email, password, full_name, phone, avatar_url, role, created_at, updated_at`

	getUserByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	insertUserQuery = `
		INSERT INTO users (id, email, password, full_name, phone, avatar_url, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	updateUserQuery = `
		UPDATE users
		SET full_name = $2, phone = $3, avatar_url = $4, updated_at = $5
		WHERE id = $1
	`
	updatePasswordQuery = `UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.db.QueryRowContext(ctx, getUserByEmailQuery, strings.TrimSpace(email)))
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	_, err := r.db.ExecContext(ctx, insertUserQuery,
		u.ID, u.Email, u.Password, nullString(u.FullName), nullString(u.Phone), u.AvatarURL, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	res, err := r.db.ExecContext(ctx, updateUserQuery, u.ID, nullString(u.FullName), nullString(u.Phone), u.AvatarURL, u.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, updatePasswordQuery, id, hash, at)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (User, error) {
	var (
		u        User
		fullName sql.NullString
		phone    sql.NullString
		avatar   sql.NullString
		role     string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Password, &fullName, &phone, &avatar, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.FullName = fullName.String
	u.Phone = phone.String
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	u.Role = Role(role)
	return u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func TestPostgresGetCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT id FROM carts").WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c-1"))
	rows := sqlmock.NewRows([]string{"variant_id", "product_id", "title", "size", "price_snapshot", "quantity", "url", "slug"}).
		AddRow("v1", "p1", "Home Kit 24/25", "L", "89.90", 2, "/img/home.jpg", "home-kit-24-25")
	mock.ExpectQuery("FROM cart_items ci").WithArgs("c-1").WillReturnRows(rows)

	c, err := repo.GetCart(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != "c-1" || len(c.Lines) != 1 {
		t.Fatalf("unexpected cart %+v", c)
	}
	if !c.Lines[0].UnitPrice.Equal(decimal.RequireFromString("89.90")) {
		t.Fatalf("unexpected price %s", c.Lines[0].UnitPrice)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetCart_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT id FROM carts").WithArgs("u-2").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetCart(context.Background(), "u-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresMergeLines_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("SET quantity = EXCLUDED.quantity").
		WithArgs("c-1", "v1", 3, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SET quantity = EXCLUDED.quantity").
		WithArgs("c-1", "v2", 1, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts SET updated_at").WithArgs("c-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lines := []Line{line("v1", "40", 3), line("v2", "25.5", 1)}
	if err := repo.MergeLines(context.Background(), "c-1", lines, MergeOverwrite); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresMergeLines_RollbackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("cart_items.quantity \\+ EXCLUDED.quantity").
		WithArgs("c-1", "v1", 3, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("cart_items.quantity \\+ EXCLUDED.quantity").
		WithArgs("c-1", "v2", 1, sqlmock.AnyArg()).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	lines := []Line{line("v1", "40", 3), line("v2", "25.5", 1)}
	if err := repo.MergeLines(context.Background(), "c-1", lines, MergeSum); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreateCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO carts").WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c-existing"))

	c, err := repo.CreateCart(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != "c-existing" || c.UserID != "u-1" {
		t.Fatalf("unexpected cart %+v", c)
	}
}

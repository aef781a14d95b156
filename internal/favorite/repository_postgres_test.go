package favorite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"product_id", "created_at"}).
		AddRow("p2", at).
		AddRow("p1", at.Add(time.Minute))
	mock.ExpectQuery("SELECT product_id, created_at\\s+FROM favorites").WithArgs("u-1").WillReturnRows(rows)

	out, err := repo.List(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ProductID != "p2" || !out[1].AddedAt.Equal(at.Add(time.Minute)) {
		t.Fatalf("unexpected entries %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresAdd_ConflictIsAlreadyFavorite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	at := time.Now()
	mock.ExpectExec("INSERT INTO favorites").WithArgs("u-1", "p1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO favorites").WithArgs("u-1", "p1", at).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Add(context.Background(), "u-1", "p1", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Add(context.Background(), "u-1", "p1", at); !errors.Is(err, ErrAlreadyFavorite) {
		t.Fatalf("expected ErrAlreadyFavorite, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRemove_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("DELETE FROM favorites").WithArgs("u-1", "p9").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Remove(context.Background(), "u-1", "p9"); !errors.Is(err, ErrNotFavorite) {
		t.Fatalf("expected ErrNotFavorite, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

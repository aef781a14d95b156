package address

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresCreate_DefaultClearsOthersInTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	a := home()
	a.ID, a.UserID, a.IsDefault, a.CreatedAt = "a-9", "u-1", true, time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE addresses SET is_default = FALSE").WithArgs("u-1", "a-9").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO addresses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSetDefault_UnknownRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE addresses SET is_default = FALSE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE addresses SET is_default = TRUE").WithArgs("u-1", "nope").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := repo.SetDefault(context.Background(), "u-1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	cols := []string{"id", "user_id", "full_name", "phone", "address_line1", "address_line2", "city", "state",
		"postal_code", "country", "label", "is_default", "created_at"}
	mock.ExpectQuery("FROM addresses WHERE user_id").WithArgs("u-1", "a-1").WillReturnRows(sqlmock.NewRows(cols).
		AddRow("a-1", "u-1", "Sam Doe", nil, "12 High St", nil, "Leeds", nil, "LS1 1AA", "GB", "Home", true, time.Now()))

	a, err := repo.Get(context.Background(), "u-1", "a-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.City != "Leeds" || !a.IsDefault || a.Phone != "" || a.Label != "Home" {
		t.Fatalf("unexpected address %+v", a)
	}
}

package dimensions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoListByTypeOrdersByOrd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "type", "name", "description", "is_default", "ord", "created_at", "updated_at"}).
		AddRow(int64(1), TypeCleaning, "Typo correction", "fix typos", true, 0, now, now).
		AddRow(int64(3), TypeCleaning, "Custom", nil, false, 1, now, now)
	mock.ExpectQuery("SELECT id, type, name, description, is_default, ord").
		WithArgs(TypeCleaning).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	list, err := repo.ListByType(context.Background(), TypeCleaning)
	if err != nil {
		t.Fatalf("ListByType: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 dimensions, got %d", len(list))
	}
	if list[1].Description != "" {
		t.Fatalf("expected empty description for NULL column, got %q", list[1].Description)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteRejectsDefault(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_default FROM dimensions").
		WithArgs(TypeCleaning, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(true))
	mock.ExpectRollback()

	repo := &PGRepo{DB: db}
	if err := repo.Delete(context.Background(), TypeCleaning, 1); !errors.Is(err, ErrDefaultProtected) {
		t.Fatalf("expected ErrDefaultProtected, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteReordersRemaining(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT is_default FROM dimensions").
		WithArgs(TypeLabeling, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(false))
	mock.ExpectExec("DELETE FROM dimensions").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE dimensions").
		WithArgs(TypeLabeling).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	repo := &PGRepo{DB: db}
	if err := repo.Delete(context.Background(), TypeLabeling, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

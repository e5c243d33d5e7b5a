package patients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

func TestPostgresRepository_CreateDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO patients`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "patients_email_key"})

	repo := NewPostgresRepositoryWithDB(mock)
	_, err = repo.Create(context.Background(), &CreatePatientRequest{
		FirstName: "Jane", LastName: "Roe", Email: "jane@example.com", Phone: "555",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_CreateReturnsID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO patients`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	repo := NewPostgresRepositoryWithDB(mock)
	p, err := repo.Create(context.Background(), &CreatePatientRequest{
		FirstName: "Jane", LastName: "Roe", Email: "jane@example.com", Phone: "555",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.ID != 7 || p.PreferredLanguage != "en" {
		t.Fatalf("unexpected patient %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM patients WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepositoryWithDB(mock)
	if _, err := repo.GetByID(context.Background(), 42); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestPostgresRepository_DeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM patients WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresRepositoryWithDB(mock)
	if err := repo.Delete(context.Background(), 3); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestPostgresRepository_Count(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM patients`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))

	n, err := NewPostgresRepositoryWithDB(mock).Count(context.Background())
	if err != nil || n != 12 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "patients_email_key"}

	if !IsUniqueViolation(dup, "") {
		t.Fatalf("expected unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("wrapped: %w", dup), "patients_email_key") {
		t.Fatalf("expected wrapped violation with matching constraint")
	}
	if IsUniqueViolation(dup, "users_username_key") {
		t.Fatalf("constraint mismatch should not match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom"), "") {
		t.Fatalf("plain error should not match")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})) {
		t.Fatalf("expected foreign key violation")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation is not a foreign key violation")
	}
}

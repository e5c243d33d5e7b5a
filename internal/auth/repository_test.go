package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUserRepository_CreateFirstAdmin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	u := &User{Username: "admin", Email: "admin@example.com", PasswordHash: "hash", Role: RoleAdmin, IsActive: true}

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = 'admin'`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("admin", "admin@example.com", "hash", RoleAdmin, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	mock.ExpectCommit()

	repo := NewPostgresUserRepositoryWithDB(mock)
	created, err := repo.CreateFirstAdmin(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, now, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_CreateFirstAdminRefusesSecond(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectRollback()

	repo := NewPostgresUserRepositoryWithDB(mock)
	_, err = repo.CreateFirstAdmin(context.Background(), &User{Username: "x", Email: "x@example.com", Role: RoleAdmin})
	assert.ErrorIs(t, err, ErrAdminExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_CreateMapsConstraints(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{"users_username_key", ErrUsernameTaken},
		{"users_email_key", ErrEmailTaken},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`INSERT INTO users`).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})

			repo := NewPostgresUserRepositoryWithDB(mock)
			_, err = repo.Create(context.Background(), &User{Username: "bob", Email: "bob@example.com", Role: RoleStaff})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPostgresUserRepository_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1 AND is_active = TRUE`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresUserRepositoryWithDB(mock)
	_, err = repo.GetActiveByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresUserRepositoryPanicsOnNilPool(t *testing.T) {
	assert.Panics(t, func() { NewPostgresUserRepository(nil) })
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/clinic-assistant/internal/database"
)

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) (*User, error)
	// CreateFirstAdmin inserts u only while no admin exists, atomically.
	CreateFirstAdmin(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetActiveByUsername ignores deactivated accounts.
	GetActiveByUsername(ctx context.Context, username string) (*User, error)
}

// InMemoryUserRepository keeps users in a map.
type InMemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[int64]*User)}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, u *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(u)
}

func (r *InMemoryUserRepository) CreateFirstAdmin(ctx context.Context, u *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.IsAdmin() {
			return nil, ErrAdminExists
		}
	}
	return r.insertLocked(u)
}

func (r *InMemoryUserRepository) insertLocked(u *User) (*User, error) {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, ErrEmailTaken
		}
	}
	r.nextID++
	stored := *u
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	r.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *InMemoryUserRepository) GetActiveByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.IsActive {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

const userColumns = `id, username, email, password_hash, role, is_active, created_at`

// PostgresUserRepository stores users in PostgreSQL.
type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	if pool == nil {
		panic("auth: pgx pool required")
	}
	return &PostgresUserRepository{db: pool}
}

// NewPostgresUserRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresUserRepositoryWithDB(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertUser(ctx context.Context, q queryRower, u *User) (*User, error) {
	out := *u
	err := q.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		out.Username, out.Email, out.PasswordHash, out.Role, out.IsActive,
	).Scan(&out.ID, &out.CreatedAt)
	switch {
	case err == nil:
		return &out, nil
	case database.IsUniqueViolation(err, "users_username_key"):
		return nil, ErrUsernameTaken
	case database.IsUniqueViolation(err, "users_email_key"):
		return nil, ErrEmailTaken
	default:
		return nil, fmt.Errorf("auth: insert user: %w", err)
	}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *User) (*User, error) {
	return insertUser(ctx, r.db, u)
}

// CreateFirstAdmin serialises concurrent bootstrap attempts on an advisory lock
// so the zero-admin check and the insert see the same state.
func (r *PostgresUserRepository) CreateFirstAdmin(ctx context.Context, u *User) (*User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('users.create_admin'))`); err != nil {
		return nil, fmt.Errorf("auth: lock: %w", err)
	}
	var admins int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&admins); err != nil {
		return nil, fmt.Errorf("auth: count admins: %w", err)
	}
	if admins > 0 {
		return nil, ErrAdminExists
	}
	created, err := insertUser(ctx, tx, u)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("auth: commit: %w", err)
	}
	return created, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetActiveByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 AND is_active = TRUE`, username))
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: scan user: %w", err)
	}
	return &u, nil
}

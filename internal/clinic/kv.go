package clinic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-assistant/internal/database"
)

// KV stores singleton settings documents as JSON blobs by key.
type KV interface {
	// Load returns ErrSettingNotFound when key has never been written.
	Load(ctx context.Context, key string) ([]byte, error)
	// InitIfAbsent writes def when key is missing and returns the stored value either way.
	InitIfAbsent(ctx context.Context, key string, def []byte) ([]byte, error)
	// Store overwrites key. Concurrent writers are last-write-wins.
	Store(ctx context.Context, key string, value []byte) error
}

// PostgresKV keeps settings in the settings table.
type PostgresKV struct {
	db database.DB
}

// NewPostgresKV initializes a KV backed by pgxpool.
func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	if pool == nil {
		panic("clinic: pgx pool required")
	}
	return &PostgresKV{db: pool}
}

// NewPostgresKVWithDB allows injecting a mock database for testing.
func NewPostgresKVWithDB(db database.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

func (k *PostgresKV) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := k.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("clinic: load setting %s: %w", key, err)
	}
	return value, nil
}

// InitIfAbsent serialises first-time initialisation with a transaction-scoped
// advisory lock keyed on the setting name, so two first readers cannot both insert.
func (k *PostgresKV) InitIfAbsent(ctx context.Context, key string, def []byte) ([]byte, error) {
	tx, err := k.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("clinic: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return nil, fmt.Errorf("clinic: lock setting %s: %w", key, err)
	}

	var value []byte
	err = tx.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	switch {
	case err == nil:
		return value, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("clinic: load setting %s: %w", key, err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2::jsonb, NOW())`,
		key, string(def),
	); err != nil {
		return nil, fmt.Errorf("clinic: init setting %s: %w", key, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("clinic: commit setting %s: %w", key, err)
	}
	return def, nil
}

func (k *PostgresKV) Store(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := k.db.Exec(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("clinic: store setting %s: %w", key, err)
	}
	return nil
}

// MemoryKV is an in-process KV for tests and database-less runs.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (k *MemoryKV) Load(ctx context.Context, key string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.values[key]
	if !ok {
		return nil, ErrSettingNotFound
	}
	return append([]byte(nil), v...), nil
}

func (k *MemoryKV) InitIfAbsent(ctx context.Context, key string, def []byte) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if v, ok := k.values[key]; ok {
		return append([]byte(nil), v...), nil
	}
	k.values[key] = append([]byte(nil), def...)
	return def, nil
}

func (k *MemoryKV) Store(ctx context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.values[key] = append([]byte(nil), value...)
	return nil
}

// RedisCachedKV is a read-through Redis cache in front of another KV.
// Writes go to the backing store first and then evict the cached copy.
type RedisCachedKV struct {
	next  KV
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisCachedKV returns next unchanged when redisClient is nil.
func NewRedisCachedKV(next KV, redisClient *redis.Client, ttl time.Duration) KV {
	if redisClient == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCachedKV{next: next, redis: redisClient, ttl: ttl}
}

func (c *RedisCachedKV) key(name string) string {
	return fmt.Sprintf("clinic:settings:%s", name)
}

func (c *RedisCachedKV) Load(ctx context.Context, key string) ([]byte, error) {
	if data, err := c.redis.Get(ctx, c.key(key)).Bytes(); err == nil {
		return data, nil
	}
	value, err := c.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, value)
	return value, nil
}

func (c *RedisCachedKV) InitIfAbsent(ctx context.Context, key string, def []byte) ([]byte, error) {
	if data, err := c.redis.Get(ctx, c.key(key)).Bytes(); err == nil {
		return data, nil
	}
	value, err := c.next.InitIfAbsent(ctx, key, def)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, value)
	return value, nil
}

func (c *RedisCachedKV) Store(ctx context.Context, key string, value []byte) error {
	if err := c.next.Store(ctx, key, value); err != nil {
		return err
	}
	// A failed eviction leaves a stale entry until the TTL expires.
	_ = c.redis.Del(ctx, c.key(key)).Err()
	return nil
}

func (c *RedisCachedKV) fill(ctx context.Context, key string, value []byte) {
	_ = c.redis.Set(ctx, c.key(key), value, c.ttl).Err()
}

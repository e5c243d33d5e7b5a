package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresKV_InitIfAbsentInsertsDefault(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	def := []byte(`{"slot_duration":30}`)
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("booking_settings").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT value FROM settings WHERE key = \$1`).
		WithArgs("booking_settings").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs("booking_settings", string(def)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	kv := NewPostgresKVWithDB(mock)
	got, err := kv.InitIfAbsent(context.Background(), "booking_settings", def)
	require.NoError(t, err)
	assert.JSONEq(t, string(def), string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_InitIfAbsentKeepsExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	stored := []byte(`{"slot_duration":45}`)
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs("booking_settings").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT value FROM settings WHERE key = \$1`).
		WithArgs("booking_settings").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(stored))
	mock.ExpectRollback()

	kv := NewPostgresKVWithDB(mock)
	got, err := kv.InitIfAbsent(context.Background(), "booking_settings", []byte(`{"slot_duration":30}`))
	require.NoError(t, err)
	assert.JSONEq(t, string(stored), string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_LoadMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = \$1`).
		WithArgs("google_calendar_token").
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresKVWithDB(mock).Load(context.Background(), "google_calendar_token")
	assert.True(t, errors.Is(err, ErrSettingNotFound))
}

func TestPostgresKV_StoreUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("clinic_settings", `{}`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgresKVWithDB(mock).Store(context.Background(), "clinic_settings", []byte(`{}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryKV_InitIfAbsentOnlyOnce(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	first, err := kv.InitIfAbsent(ctx, "k", []byte("a"))
	require.NoError(t, err)
	second, err := kv.InitIfAbsent(ctx, "k", []byte("b"))
	require.NoError(t, err)

	assert.Equal(t, "a", string(first))
	assert.Equal(t, "a", string(second))
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCachedKV_ReadThroughAndEvict(t *testing.T) {
	mr, client := newTestRedis(t)
	backing := NewMemoryKV()
	kv := NewRedisCachedKV(backing, client, time.Minute)
	ctx := context.Background()

	_, err := kv.InitIfAbsent(ctx, "clinic_settings", []byte(`{"clinic_name":"A"}`))
	require.NoError(t, err)
	assert.True(t, mr.Exists("clinic:settings:clinic_settings"))

	require.NoError(t, kv.Store(ctx, "clinic_settings", []byte(`{"clinic_name":"B"}`)))
	assert.False(t, mr.Exists("clinic:settings:clinic_settings"))

	got, err := kv.Load(ctx, "clinic_settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"clinic_name":"B"}`, string(got))
}

func TestRedisCachedKV_ServesFromCache(t *testing.T) {
	mr, client := newTestRedis(t)
	kv := NewRedisCachedKV(NewMemoryKV(), client, time.Minute)

	require.NoError(t, mr.Set("clinic:settings:booking_settings", `{"slot_duration":15}`))
	got, err := kv.Load(context.Background(), "booking_settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"slot_duration":15}`, string(got))
}

func TestNewRedisCachedKV_NilClientPassesThrough(t *testing.T) {
	backing := NewMemoryKV()
	assert.Same(t, KV(backing), NewRedisCachedKV(backing, nil, 0))
}

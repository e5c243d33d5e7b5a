package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerIssueAndParse(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, nil)
	token, issued, err := tm.Issue(&User{ID: 7, Username: "alice", Role: RoleAdmin})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, issued.ID, claims.ID)
	assert.True(t, claims.IsAdmin())
}

func TestTokenManagerRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute, nil)
	start := time.Now()
	tm.now = func() time.Time { return start }
	token, _, err := tm.Issue(&User{ID: 1, Role: RoleStaff})
	require.NoError(t, err)

	tm.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = tm.Parse(context.Background(), token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenManagerRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenManager("other", time.Hour, nil).Issue(&User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour, nil).Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("secret", time.Hour, nil).Parse(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManagerDefaults(t *testing.T) {
	assert.Panics(t, func() { NewTokenManager("", time.Hour, nil) })
	assert.Equal(t, DefaultSessionTTL, NewTokenManager("secret", 0, nil).TTL())
}

func TestTokenManagerRevokeWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tm := NewTokenManager("secret", time.Hour, NewRedisRevocations(client))
	token, claims, err := tm.Issue(&User{ID: 3, Role: RoleStaff})
	require.NoError(t, err)

	_, err = tm.Parse(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(context.Background(), claims))
	assert.True(t, mr.Exists("auth:revoked:"+claims.ID))
	ttl := mr.TTL("auth:revoked:" + claims.ID)
	assert.True(t, ttl > 0 && ttl <= time.Hour, "unexpected ttl %s", ttl)

	_, err = tm.Parse(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	mr.FastForward(time.Hour + time.Second)
	revoked, err := NewRedisRevocations(client).IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenManagerRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tm := NewTokenManager("secret", time.Hour, NewRedisRevocations(client))
	token, _, err := tm.Issue(&User{ID: 3})
	require.NoError(t, err)

	mr.Close()
	_, err = tm.Parse(context.Background(), token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryRevocations(t *testing.T) {
	r := NewMemoryRevocations()
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "a", time.Now().Add(time.Hour)))
	require.NoError(t, r.Revoke(ctx, "b", time.Now().Add(-time.Second)))

	revoked, _ := r.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = r.IsRevoked(ctx, "b")
	assert.False(t, revoked)
	revoked, _ = r.IsRevoked(ctx, "c")
	assert.False(t, revoked)
}

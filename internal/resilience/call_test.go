package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func fastPolicy(retries int) Policy {
	return Policy{Timeout: 50 * time.Millisecond, Retries: retries, Backoff: time.Millisecond}
}

func TestDoRetriesTransientOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(1), nil, "test", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return statusErr(503)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")
	err := Do(context.Background(), fastPolicy(3), nil, "test", func(ctx context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoGivesUpAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(1), nil, "test", func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, calls)
}

func TestDoHonoursParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, fastPolicy(2), nil, "test", func(ctx context.Context) error {
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("wrap: %w", statusErr(429))))
	assert.True(t, IsTransient(&googleapi.Error{Code: 500}))
	assert.False(t, IsTransient(&googleapi.Error{Code: 404}))
	assert.False(t, IsTransient(statusErr(400)))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(nil))
}

func TestPolicyDefaults(t *testing.T) {
	p := Policy{Retries: -1}.normalized()
	assert.Equal(t, 20*time.Second, p.Timeout)
	assert.Equal(t, 0, p.Retries)
	assert.Equal(t, DefaultPolicy().Retries, 1)
}

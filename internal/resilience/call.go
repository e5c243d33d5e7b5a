// Package resilience bounds calls to external collaborators (completion
// providers, the calendar, email) with a per-attempt timeout and a small
// number of retries on transient failures.
package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Policy describes how an external call is bounded.
type Policy struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// DefaultPolicy is 20s per attempt with one retry.
func DefaultPolicy() Policy {
	return Policy{Timeout: 20 * time.Second, Retries: 1, Backoff: 250 * time.Millisecond}
}

func (p Policy) normalized() Policy {
	if p.Timeout <= 0 {
		p.Timeout = 20 * time.Second
	}
	if p.Retries < 0 {
		p.Retries = 0
	}
	if p.Backoff <= 0 {
		p.Backoff = 250 * time.Millisecond
	}
	return p
}

// Do runs fn until it succeeds, returns a permanent error, or retries are exhausted.
// Each attempt gets its own deadline derived from ctx.
func Do(ctx context.Context, p Policy, logger *logging.Logger, op string, fn func(ctx context.Context) error) error {
	p = p.normalized()
	var lastErr error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == p.Retries || !IsTransient(err) {
			break
		}
		if logger != nil {
			logger.Warn("external call retry", "op", op, "attempt", attempt+1, "error", err)
		}
		if sleepErr := sleep(ctx, p.Backoff*time.Duration(1<<attempt)); sleepErr != nil {
			return sleepErr
		}
	}
	return lastErr
}

// IsTransient reports whether err looks worth retrying: timeouts, network
// errors, throttling and server-side failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return retryableStatus(gErr.Code)
	}
	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.HTTPStatusCode())
	}
	return false
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

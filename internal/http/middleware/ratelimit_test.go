package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterRefills(t *testing.T) {
	rl := &RateLimiter{buckets: map[string]*bucket{}, rate: 1, burst: 2}
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatalf("expected burst of 2 to be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatalf("expected third request to be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatalf("expected other ip to have its own bucket")
	}
	clock = clock.Add(time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Fatalf("expected refill after one second")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimit(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", first.Code)
	}
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}

func TestRateLimiterWaitAndEviction(t *testing.T) {
	rl := &RateLimiter{buckets: map[string]*bucket{}, rate: 0.5, burst: 1}
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	if ok, _ := rl.take("10.0.0.1"); !ok {
		t.Fatalf("expected first request allowed")
	}
	ok, wait := rl.take("10.0.0.1")
	if ok || wait != 2*time.Second {
		t.Fatalf("expected 2s wait, got ok=%v wait=%v", ok, wait)
	}

	clock = clock.Add(rateLimitIdleAfter + time.Minute)
	rl.evictIdle()
	if len(rl.buckets) != 0 {
		t.Fatalf("expected idle bucket evicted, have %d", len(rl.buckets))
	}
}

func TestRateLimitSharesBucketAcrossPorts(t *testing.T) {
	handler := RateLimit(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	first.RemoteAddr = "203.0.113.7:50001"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	second.RemoteAddr = "203.0.113.7:50002"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

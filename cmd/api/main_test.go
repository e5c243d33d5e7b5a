package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/wolfman30/clinic-assistant/internal/config"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

func TestSetupMetricsExposesClinicCounters(t *testing.T) {
	handler, m := setupMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveChatReply("faq", "faq")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "clinic_chat_replies_total") {
		t.Fatalf("expected chat reply counter to be exported")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected runtime collectors to be registered")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	pool, err := connectPostgresPool(context.Background(), &appconfig.Config{}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestConnectPostgresPoolRequiredInProduction(t *testing.T) {
	logger := logging.New("error")
	if _, err := connectPostgresPool(context.Background(), &appconfig.Config{Env: "production"}, logger); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestConnectPostgresPoolBadURL(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{DatabaseURL: "://not-a-url"}
	if _, err := connectPostgresPool(context.Background(), cfg, logger); err == nil {
		t.Fatalf("expected parse error")
	}
}

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClinicMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClinicMetrics(reg)
	m.ObserveChatReply("faq", "faq")
	m.ObserveChatReply("faq", "faq")
	m.ObserveExternalCall("calendar", "create_event", errors.New("boom"), 0.2)
	m.ObserveHTTPRequest("GET", 404)

	if got := testutil.ToFloat64(m.chatReplies.WithLabelValues("faq", "faq")); got != 2 {
		t.Fatalf("expected 2 faq replies, got %v", got)
	}
	if got := testutil.ToFloat64(m.externalCalls.WithLabelValues("calendar", "create_event", "error")); got != 1 {
		t.Fatalf("expected 1 calendar error, got %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequestTotal.WithLabelValues("GET", "4xx")); got != 1 {
		t.Fatalf("expected 1 4xx request, got %v", got)
	}
}

func TestClinicMetricsNilSafe(t *testing.T) {
	var m *ClinicMetrics
	m.ObserveChatReply("general", "greeting")
	m.ObserveExternalCall("llm", "complete", nil, 0.1)
	m.ObserveHTTPRequest("POST", 201)
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 302: "3xx", 401: "4xx", 503: "5xx"}
	for status, want := range cases {
		if got := statusClass(status); got != want {
			t.Fatalf("statusClass(%d) = %s, want %s", status, got, want)
		}
	}
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClinicMetrics exposes counters/histograms for chat replies and external collaborators.
type ClinicMetrics struct {
	chatReplies      *prometheus.CounterVec
	externalCalls    *prometheus.CounterVec
	externalLatency  *prometheus.HistogramVec
	httpRequestTotal *prometheus.CounterVec
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		chatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Chat replies by classified intent and reply type",
		}, []string{"intent", "type"}),
		externalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "external",
			Name:      "calls_total",
			Help:      "Calls to calendar, completion and email providers",
		}, []string{"collaborator", "op", "outcome"}),
		externalLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "external",
			Name:      "call_latency_seconds",
			Help:      "Latency of external collaborator calls including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collaborator", "op"}),
		httpRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status class",
		}, []string{"method", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chatReplies, m.externalCalls, m.externalLatency, m.httpRequestTotal)
	return m
}

func (m *ClinicMetrics) ObserveChatReply(intent, replyType string) {
	if m == nil {
		return
	}
	m.chatReplies.WithLabelValues(intent, replyType).Inc()
}

// ObserveExternalCall records one bounded call; err == nil counts as success.
func (m *ClinicMetrics) ObserveExternalCall(collaborator, op string, err error, seconds float64) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.externalCalls.WithLabelValues(collaborator, op, outcome).Inc()
	m.externalLatency.WithLabelValues(collaborator, op).Observe(seconds)
}

func (m *ClinicMetrics) ObserveHTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequestTotal.WithLabelValues(method, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

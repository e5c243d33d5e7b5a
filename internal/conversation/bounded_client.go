package conversation

import (
	"context"
	"time"

	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/internal/resilience"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// BoundedLLMClient applies a per-attempt timeout and retry policy to another client.
type BoundedLLMClient struct {
	inner   LLMClient
	policy  resilience.Policy
	logger  *logging.Logger
	metrics *metrics.ClinicMetrics
}

func NewBoundedLLMClient(inner LLMClient, policy resilience.Policy, logger *logging.Logger, m *metrics.ClinicMetrics) *BoundedLLMClient {
	return &BoundedLLMClient{inner: inner, policy: policy, logger: logger, metrics: m}
}

func (c *BoundedLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	started := time.Now()
	var resp LLMResponse
	err := resilience.Do(ctx, c.policy, c.logger, "completion", func(ctx context.Context) error {
		var err error
		resp, err = c.inner.Complete(ctx, req)
		return err
	})
	c.metrics.ObserveExternalCall("completion", "complete", err, time.Since(started).Seconds())
	if err != nil {
		return LLMResponse{}, err
	}
	return resp, nil
}

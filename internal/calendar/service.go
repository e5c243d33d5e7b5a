package calendar

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/internal/resilience"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

var calendarTracer = otel.Tracer("clinic.internal.calendar")

// Service wraps a Provider so calendar trouble never fails the caller:
// event writes log and swallow errors, slot queries fall back to DefaultSlots.
type Service struct {
	provider Provider
	policy   resilience.Policy
	logger   *logging.Logger
	metrics  *metrics.ClinicMetrics
}

// NewService wraps provider, which may be nil when no calendar is configured.
func NewService(provider Provider, policy resilience.Policy, logger *logging.Logger, m *metrics.ClinicMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{provider: provider, policy: policy, logger: logger, metrics: m}
}

// Enabled reports whether a provider is wired.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// CreateEvent returns the new event id, or "" when the calendar is unavailable.
func (s *Service) CreateEvent(ctx context.Context, details EventDetails) string {
	if !s.Enabled() {
		return ""
	}
	ctx, span := calendarTracer.Start(ctx, "calendar.create_event")
	defer span.End()

	var id string
	err := s.call(ctx, "create_event", func(ctx context.Context) error {
		var err error
		id, err = s.provider.CreateEvent(ctx, details)
		return err
	})
	if err != nil {
		span.RecordError(err)
		s.logFailure("create_event", err)
		return ""
	}
	span.SetAttributes(attribute.String("calendar.event_id", id))
	return id
}

// UpdateEvent reports whether the event was updated.
func (s *Service) UpdateEvent(ctx context.Context, eventID string, details EventDetails) bool {
	if !s.Enabled() || eventID == "" {
		return false
	}
	ctx, span := calendarTracer.Start(ctx, "calendar.update_event")
	defer span.End()

	err := s.call(ctx, "update_event", func(ctx context.Context) error {
		return s.provider.UpdateEvent(ctx, eventID, details)
	})
	if err != nil {
		span.RecordError(err)
		s.logFailure("update_event", err, "event_id", eventID)
		return false
	}
	return true
}

// DeleteEvent reports whether the event was deleted.
func (s *Service) DeleteEvent(ctx context.Context, eventID string) bool {
	if !s.Enabled() || eventID == "" {
		return false
	}
	ctx, span := calendarTracer.Start(ctx, "calendar.delete_event")
	defer span.End()

	err := s.call(ctx, "delete_event", func(ctx context.Context) error {
		return s.provider.DeleteEvent(ctx, eventID)
	})
	if err != nil {
		span.RecordError(err)
		s.logFailure("delete_event", err, "event_id", eventID)
		return false
	}
	return true
}

// ListAvailableSlots never fails: any provider problem yields DefaultSlots.
func (s *Service) ListAvailableSlots(ctx context.Context, date time.Time) []string {
	if !s.Enabled() {
		return DefaultSlots()
	}
	ctx, span := calendarTracer.Start(ctx, "calendar.available_slots")
	defer span.End()

	start, end := BusinessHours(date)
	var busy []Interval
	err := s.call(ctx, "list_events", func(ctx context.Context) error {
		var err error
		busy, err = s.provider.BusyIntervals(ctx, start, end)
		return err
	})
	if err != nil {
		span.RecordError(err)
		s.logFailure("list_events", err)
		return DefaultSlots()
	}
	return AvailableSlots(date, busy)
}

func (s *Service) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	started := time.Now()
	err := resilience.Do(ctx, s.policy, s.logger, "calendar."+op, fn)
	s.metrics.ObserveExternalCall("calendar", op, err, time.Since(started).Seconds())
	return err
}

func (s *Service) logFailure(op string, err error, args ...any) {
	fields := append([]any{"op", op, "error", err}, args...)
	if errors.Is(err, ErrNotConfigured) {
		s.logger.Debug("calendar not connected", fields...)
		return
	}
	s.logger.Warn("calendar call failed", fields...)
}

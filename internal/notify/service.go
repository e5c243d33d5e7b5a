package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-assistant/internal/observability/metrics"
	"github.com/wolfman30/clinic-assistant/internal/resilience"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// AppointmentConfirmation is the data rendered into a confirmation email.
type AppointmentConfirmation struct {
	PatientName     string
	PatientEmail    string
	AppointmentType string
	Reason          string
	Start           time.Time
	ClinicName      string
	ClinicPhone     string
	ClinicAddress   string
}

// Service sends patient-facing notifications through a bounded EmailSender.
type Service struct {
	email   EmailSender
	policy  resilience.Policy
	metrics *metrics.ClinicMetrics
	logger  *logging.Logger
}

// NewService creates a notification service. A nil sender disables sending.
func NewService(email EmailSender, policy resilience.Policy, m *metrics.ClinicMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, policy: policy, metrics: m, logger: logger}
}

// SendAppointmentConfirmation emails the patient. Missing sender or address is not an error.
func (s *Service) SendAppointmentConfirmation(ctx context.Context, c AppointmentConfirmation) error {
	if s == nil || s.email == nil {
		return nil
	}
	if strings.TrimSpace(c.PatientEmail) == "" {
		s.logger.Debug("notify: patient has no email, skipping confirmation")
		return nil
	}

	msg := EmailMessage{
		To:      c.PatientEmail,
		ToName:  c.PatientName,
		Subject: confirmationSubject(c),
		Body:    confirmationBody(c),
	}

	started := time.Now()
	err := resilience.Do(ctx, s.policy, s.logger, "email.confirmation", func(ctx context.Context) error {
		return s.email.Send(ctx, msg)
	})
	s.metrics.ObserveExternalCall("email", "appointment_confirmation", err, time.Since(started).Seconds())
	if err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}
	return nil
}

func confirmationSubject(c AppointmentConfirmation) string {
	clinic := c.ClinicName
	if clinic == "" {
		clinic = "our clinic"
	}
	return fmt.Sprintf("Your appointment at %s", clinic)
}

func confirmationBody(c AppointmentConfirmation) string {
	var b strings.Builder
	name := c.PatientName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	b.WriteString("Your appointment has been scheduled.\n\n")
	fmt.Fprintf(&b, "When: %s (UTC)\n", c.Start.UTC().Format("Monday, January 2, 2006 at 3:04 PM"))
	if c.AppointmentType != "" {
		fmt.Fprintf(&b, "Type: %s\n", c.AppointmentType)
	}
	if c.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", c.Reason)
	}
	if c.ClinicAddress != "" {
		fmt.Fprintf(&b, "Where: %s\n", c.ClinicAddress)
	}
	b.WriteString("\n")
	if c.ClinicPhone != "" {
		fmt.Fprintf(&b, "Need to reschedule? Call us at %s.\n", c.ClinicPhone)
	}
	b.WriteString("Thank you!\n")
	return b.String()
}

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/clinic-assistant/internal/resilience"
)

type recordingSender struct {
	sent []EmailMessage
	errs []error
}

func (r *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return err
	}
	return nil
}

func testPolicy() resilience.Policy {
	return resilience.Policy{Timeout: time.Second, Retries: 1, Backoff: time.Millisecond}
}

func TestSendAppointmentConfirmation(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, testPolicy(), nil, nil)

	err := svc.SendAppointmentConfirmation(context.Background(), AppointmentConfirmation{
		PatientName:     "John Doe",
		PatientEmail:    "john@example.com",
		AppointmentType: "consultation",
		Start:           time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		ClinicName:      "Medical Clinic",
		ClinicPhone:     "555-0100",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "Your appointment at Medical Clinic" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	for _, want := range []string{"Hello John Doe", "Monday, March 2, 2026 at 10:00 AM", "Type: consultation", "Call us at 555-0100"} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestSendAppointmentConfirmationRetriesTransient(t *testing.T) {
	sender := &recordingSender{errs: []error{&StatusError{Provider: "sendgrid", Code: 502}}}
	svc := NewService(sender, testPolicy(), nil, nil)

	if err := svc.SendAppointmentConfirmation(context.Background(), AppointmentConfirmation{PatientEmail: "a@example.com"}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected two attempts, got %d", len(sender.sent))
	}
}

func TestSendAppointmentConfirmationPermanentFailure(t *testing.T) {
	sender := &recordingSender{errs: []error{errors.New("invalid address")}}
	svc := NewService(sender, testPolicy(), nil, nil)

	if err := svc.SendAppointmentConfirmation(context.Background(), AppointmentConfirmation{PatientEmail: "a@example.com"}); err == nil {
		t.Fatal("expected error")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected no retry, got %d attempts", len(sender.sent))
	}
}

func TestSendAppointmentConfirmationSkips(t *testing.T) {
	var nilSvc *Service
	if err := nilSvc.SendAppointmentConfirmation(context.Background(), AppointmentConfirmation{PatientEmail: "a@example.com"}); err != nil {
		t.Fatalf("nil service should be a no-op: %v", err)
	}

	sender := &recordingSender{}
	svc := NewService(sender, testPolicy(), nil, nil)
	if err := svc.SendAppointmentConfirmation(context.Background(), AppointmentConfirmation{}); err != nil {
		t.Fatalf("missing email should be skipped: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected nothing sent")
	}
}

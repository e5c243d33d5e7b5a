package appointments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-assistant/internal/calendar"
	"github.com/wolfman30/clinic-assistant/internal/clinic"
	"github.com/wolfman30/clinic-assistant/internal/notify"
	"github.com/wolfman30/clinic-assistant/internal/patients"
	"github.com/wolfman30/clinic-assistant/internal/resilience"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

type stubProvider struct {
	mu      sync.Mutex
	err     error
	created []calendar.EventDetails
	updated []string
	deleted []string
}

func (p *stubProvider) CreateEvent(ctx context.Context, d calendar.EventDetails) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.created = append(p.created, d)
	return "evt-1", nil
}

func (p *stubProvider) UpdateEvent(ctx context.Context, id string, d calendar.EventDetails) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, id)
	return p.err
}

func (p *stubProvider) DeleteEvent(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return p.err
}

func (p *stubProvider) BusyIntervals(ctx context.Context, start, end time.Time) ([]calendar.Interval, error) {
	return nil, p.err
}

type recordingSender struct {
	sent []notify.EmailMessage
}

func (s *recordingSender) Send(ctx context.Context, msg notify.EmailMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

func testPolicy() resilience.Policy {
	return resilience.Policy{Timeout: time.Second, Retries: 0, Backoff: time.Millisecond}
}

type fixture struct {
	svc      *Service
	repo     *InMemoryRepository
	provider *stubProvider
	sender   *recordingSender
	settings *clinic.SettingsStore
	patient  *patients.Patient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := logging.Default()

	patientRepo := patients.NewInMemoryRepository()
	p, err := patientRepo.Create(ctx, &patients.CreatePatientRequest{
		FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", Phone: "555-0123",
	})
	require.NoError(t, err)

	provider := &stubProvider{}
	sender := &recordingSender{}
	settings := clinic.NewSettingsStore(clinic.NewMemoryKV())
	repo := NewInMemoryRepository()
	svc := NewService(
		repo,
		patientRepo,
		calendar.NewService(provider, testPolicy(), logger, nil),
		notify.NewService(sender, testPolicy(), nil, logger),
		settings,
		logger,
	)
	return &fixture{svc: svc, repo: repo, provider: provider, sender: sender, settings: settings, patient: p}
}

func (f *fixture) request() *CreateAppointmentRequest {
	return &CreateAppointmentRequest{
		PatientID:       f.patient.ID,
		AppointmentDate: "2026-03-02T10:00:00",
		AppointmentType: "consultation",
		ReasonForVisit:  "Annual checkup",
	}
}

func TestServiceCreateSyncsCalendarAndEmails(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Create(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, StatusScheduled, a.Status)
	assert.Equal(t, "evt-1", a.CalendarEventID)
	require.Len(t, f.provider.created, 1)
	assert.Equal(t, "Appointment - John Doe", f.provider.created[0].Summary())
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), f.provider.created[0].Start)

	stored, err := f.repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", stored.CalendarEventID)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "john.doe@example.com", f.sender.sent[0].To)
}

func TestServiceCreateSkipsEmailWhenDisabled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bs, err := f.settings.BookingSettings(ctx)
	require.NoError(t, err)
	bs.SendConfirmationEmail = false
	require.NoError(t, f.settings.SaveBookingSettings(ctx, bs))

	_, err = f.svc.Create(ctx, f.request())
	require.NoError(t, err)
	assert.Empty(t, f.sender.sent)
}

func TestServiceCreateSurvivesCalendarFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.err = errors.New("calendar down")

	a, err := f.svc.Create(context.Background(), f.request())
	require.NoError(t, err)
	assert.Empty(t, a.CalendarEventID)

	n, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestServiceCreateUnknownPatient(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.PatientID = 999

	_, err := f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, patients.ErrPatientNotFound)
	assert.Empty(t, f.provider.created)
}

func TestServiceUpdateResyncsCalendar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	status := StatusConfirmed
	updated, err := f.svc.Update(ctx, a.ID, &UpdateAppointmentRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
	assert.Equal(t, "consultation", updated.AppointmentType)
	assert.Equal(t, []string{"evt-1"}, f.provider.updated)

	bad := "pending"
	_, err = f.svc.Update(ctx, a.ID, &UpdateAppointmentRequest{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestServiceDeleteRemovesCalendarEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, a.ID))
	assert.Equal(t, []string{"evt-1"}, f.provider.deleted)

	_, err = f.svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, a.ID), ErrAppointmentNotFound)
}

func TestServiceCountPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	done := StatusCompleted
	_, err = f.svc.Update(ctx, a.ID, &UpdateAppointmentRequest{Status: &done})
	require.NoError(t, err)

	pending, err := f.svc.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestParseDateTime(t *testing.T) {
	for _, raw := range []string{"2026-03-02T10:00:00", "2026-03-02T10:00", "2026-03-02T10:00:00Z", "2026-03-02T05:00:00-05:00"} {
		got, err := ParseDateTime(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), got, raw)
	}
	_, err := ParseDateTime("03/02/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

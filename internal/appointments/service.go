package appointments

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-assistant/internal/calendar"
	"github.com/wolfman30/clinic-assistant/internal/clinic"
	"github.com/wolfman30/clinic-assistant/internal/notify"
	"github.com/wolfman30/clinic-assistant/internal/patients"
	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.appointments")

// PatientLookup is the part of the patient store the booking flow needs.
type PatientLookup interface {
	GetByID(ctx context.Context, id int64) (*patients.Patient, error)
}

// SettingsReader exposes the clinic profile and booking policy.
type SettingsReader interface {
	ClinicSettings(ctx context.Context) (*clinic.ClinicSettings, error)
	BookingSettings(ctx context.Context) (*clinic.BookingSettings, error)
}

// Service owns appointment writes and their calendar and email side effects.
// Side effects never fail the write.
type Service struct {
	repo     Repository
	patients PatientLookup
	calendar *calendar.Service
	notifier *notify.Service
	settings SettingsReader
	logger   *logging.Logger
}

// NewService wires the booking flow. calendarSvc, notifier and settings may be nil.
func NewService(repo Repository, patientLookup PatientLookup, calendarSvc *calendar.Service, notifier *notify.Service, settings SettingsReader, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		patients: patientLookup,
		calendar: calendarSvc,
		notifier: notifier,
		settings: settings,
		logger:   logger,
	}
}

// List returns all appointments ordered by date.
func (s *Service) List(ctx context.Context) ([]*Appointment, error) {
	return s.repo.List(ctx)
}

// Get returns one appointment.
func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the appointment, then mirrors it to the calendar and sends the
// confirmation email when the booking policy asks for one.
func (s *Service) Create(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.create")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	a, err := req.toAppointment()
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("appointment.id", created.ID))

	if eventID := s.calendar.CreateEvent(ctx, eventDetails(patient, created)); eventID != "" {
		if err := s.repo.SetCalendarEventID(ctx, created.ID, eventID); err != nil {
			s.logger.Warn("failed to store calendar event id", "appointment_id", created.ID, "error", err)
		} else {
			created.CalendarEventID = eventID
		}
	}
	s.sendConfirmation(ctx, patient, created)
	return created, nil
}

// Update applies a partial update and resyncs the calendar event if one exists.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateAppointmentRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.update")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated.CalendarEventID != "" && s.calendar.Enabled() {
		patient, err := s.patients.GetByID(ctx, updated.PatientID)
		if err != nil {
			s.logger.Warn("calendar update skipped, patient lookup failed", "appointment_id", id, "error", err)
			return updated, nil
		}
		s.calendar.UpdateEvent(ctx, updated.CalendarEventID, eventDetails(patient, updated))
	}
	return updated, nil
}

// Delete removes the appointment and its calendar event.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "appointments.delete")
	defer span.End()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.calendar.DeleteEvent(ctx, a.CalendarEventID)
	return s.repo.Delete(ctx, id)
}

// Count returns the total number of appointments.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// CountPending returns the number of appointments still in the scheduled state.
func (s *Service) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, StatusScheduled)
}

func (s *Service) sendConfirmation(ctx context.Context, patient *patients.Patient, a *Appointment) {
	if s.notifier == nil || s.settings == nil {
		return
	}
	booking, err := s.settings.BookingSettings(ctx)
	if err != nil {
		s.logger.Warn("confirmation skipped, booking settings unavailable", "error", err)
		return
	}
	if !booking.SendConfirmationEmail {
		return
	}
	msg := notify.AppointmentConfirmation{
		PatientName:     patient.FullName(),
		PatientEmail:    patient.Email,
		AppointmentType: a.AppointmentType,
		Reason:          a.ReasonForVisit,
		Start:           a.AppointmentDate,
	}
	if cs, err := s.settings.ClinicSettings(ctx); err == nil {
		msg.ClinicName = cs.ClinicName
		msg.ClinicPhone = cs.Phone
		msg.ClinicAddress = cs.FullAddress()
	}
	if err := s.notifier.SendAppointmentConfirmation(ctx, msg); err != nil {
		s.logger.Warn("appointment confirmation email failed", "appointment_id", a.ID, "error", err)
	}
}

func eventDetails(p *patients.Patient, a *Appointment) calendar.EventDetails {
	return calendar.EventDetails{
		PatientFirstName: p.FirstName,
		PatientLastName:  p.LastName,
		PatientEmail:     p.Email,
		PatientPhone:     p.Phone,
		Reason:           a.ReasonForVisit,
		Status:           a.Status,
		Start:            a.AppointmentDate,
	}
}

// isClientError reports whether err should surface as a 4xx.
func isClientError(err error) bool {
	return errors.Is(err, ErrMissingFields) || errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrUnknownReference)
}

package appointments

import (
	"strings"
	"time"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// Appointment is a booked visit.
type Appointment struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patient_id"`
	DoctorID        *int64    `json:"doctor_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentType string    `json:"appointment_type"`
	Status          string    `json:"status"`
	ReasonForVisit  string    `json:"reason_for_visit"`
	Symptoms        string    `json:"symptoms"`
	Notes           string    `json:"notes"`
	CalendarEventID string    `json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateAppointmentRequest is the payload for POST /api/appointments.
type CreateAppointmentRequest struct {
	PatientID       int64  `json:"patient_id"`
	DoctorID        *int64 `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentType string `json:"appointment_type"`
	ReasonForVisit  string `json:"reason_for_visit"`
	Symptoms        string `json:"symptoms"`
	Notes           string `json:"notes"`
}

// Validate checks required fields and the date format.
func (r *CreateAppointmentRequest) Validate() error {
	if r.PatientID <= 0 || strings.TrimSpace(r.AppointmentDate) == "" || strings.TrimSpace(r.AppointmentType) == "" {
		return ErrMissingFields
	}
	if _, err := ParseDateTime(r.AppointmentDate); err != nil {
		return err
	}
	return nil
}

func (r *CreateAppointmentRequest) toAppointment() (*Appointment, error) {
	at, err := ParseDateTime(r.AppointmentDate)
	if err != nil {
		return nil, err
	}
	return &Appointment{
		PatientID:       r.PatientID,
		DoctorID:        r.DoctorID,
		AppointmentDate: at,
		AppointmentType: r.AppointmentType,
		Status:          StatusScheduled,
		ReasonForVisit:  r.ReasonForVisit,
		Symptoms:        r.Symptoms,
		Notes:           r.Notes,
	}, nil
}

// UpdateAppointmentRequest is a partial update; nil fields are left untouched.
type UpdateAppointmentRequest struct {
	DoctorID        *int64  `json:"doctor_id"`
	AppointmentDate *string `json:"appointment_date"`
	AppointmentType *string `json:"appointment_type"`
	Status          *string `json:"status"`
	ReasonForVisit  *string `json:"reason_for_visit"`
	Symptoms        *string `json:"symptoms"`
	Notes           *string `json:"notes"`
}

// Validate checks the status and date when present.
func (r *UpdateAppointmentRequest) Validate() error {
	if r.Status != nil && !validStatuses[*r.Status] {
		return ErrInvalidStatus
	}
	if r.AppointmentDate != nil {
		if _, err := ParseDateTime(*r.AppointmentDate); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies present fields onto a. Call Validate first.
func (r *UpdateAppointmentRequest) Apply(a *Appointment) error {
	if r.DoctorID != nil {
		id := *r.DoctorID
		a.DoctorID = &id
	}
	if r.AppointmentDate != nil {
		at, err := ParseDateTime(*r.AppointmentDate)
		if err != nil {
			return err
		}
		a.AppointmentDate = at
	}
	setString(&a.AppointmentType, r.AppointmentType)
	setString(&a.Status, r.Status)
	setString(&a.ReasonForVisit, r.ReasonForVisit)
	setString(&a.Symptoms, r.Symptoms)
	setString(&a.Notes, r.Notes)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime accepts ISO-8601 timestamps with or without an offset.
// Timestamps without an offset are taken as UTC.
func ParseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// Package clinic holds clinic-wide configuration: the clinic profile,
// booking policy, the doctor roster, and dashboard statistics.
package clinic

import (
	"encoding/json"
	"strings"
	"time"
)

// Weekdays in display order. Keys of OperatingHours and WorkingHours use these names.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DayHours is the public opening window for one weekday.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// Department is a clinical department shown to patients.
type Department struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ClinicSettings is the singleton clinic profile.
type ClinicSettings struct {
	ClinicName         string              `json:"clinic_name"`
	ClinicLogoURL      string              `json:"clinic_logo_url"`
	AddressLine1       string              `json:"address_line1"`
	AddressLine2       string              `json:"address_line2"`
	City               string              `json:"city"`
	State              string              `json:"state"`
	ZipCode            string              `json:"zip_code"`
	Country            string              `json:"country"`
	Phone              string              `json:"phone"`
	Email              string              `json:"email"`
	Website            string              `json:"website"`
	OperatingHours     map[string]DayHours `json:"operating_hours"`
	Departments        []Department        `json:"departments"`
	Services           []string            `json:"services"`
	EmailNotifications bool                `json:"email_notifications"`
	SMSNotifications   bool                `json:"sms_notifications"`
	Timezone           string              `json:"timezone"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// DefaultClinicSettings is written the first time settings are read.
func DefaultClinicSettings() *ClinicSettings {
	weekday := DayHours{Open: "09:00", Close: "17:00"}
	return &ClinicSettings{
		ClinicName: "Medical Clinic",
		Country:    "USA",
		OperatingHours: map[string]DayHours{
			"monday":    weekday,
			"tuesday":   weekday,
			"wednesday": weekday,
			"thursday":  weekday,
			"friday":    weekday,
			"saturday":  {Open: "09:00", Close: "13:00"},
			"sunday":    {Open: "09:00", Close: "13:00", Closed: true},
		},
		Departments: []Department{
			{Name: "General Medicine", Description: "Primary care and general health services"},
			{Name: "Pediatrics", Description: "Healthcare for children and adolescents"},
			{Name: "Dental", Description: "Oral health and dental care services"},
		},
		Services:           []string{},
		EmailNotifications: true,
		Timezone:           "UTC",
	}
}

// FullAddress joins the populated address parts on one line.
func (s *ClinicSettings) FullAddress() string {
	var parts []string
	for _, p := range []string{s.AddressLine1, s.AddressLine2, s.City, s.State, s.ZipCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// HoursSummary renders operating hours one weekday per line, or "" when none are set.
func (s *ClinicSettings) HoursSummary() string {
	if len(s.OperatingHours) == 0 {
		return ""
	}
	var lines []string
	for _, day := range Weekdays {
		h, ok := s.OperatingHours[day]
		if !ok {
			continue
		}
		name := strings.ToUpper(day[:1]) + day[1:]
		if h.Closed {
			lines = append(lines, name+": Closed")
			continue
		}
		lines = append(lines, name+": "+h.Open+" - "+h.Close)
	}
	return strings.Join(lines, "\n")
}

// UpdateClinicSettingsRequest is a partial update; nil fields are left untouched.
type UpdateClinicSettingsRequest struct {
	ClinicName         *string              `json:"clinic_name"`
	ClinicLogoURL      *string              `json:"clinic_logo_url"`
	AddressLine1       *string              `json:"address_line1"`
	AddressLine2       *string              `json:"address_line2"`
	City               *string              `json:"city"`
	State              *string              `json:"state"`
	ZipCode            *string              `json:"zip_code"`
	Country            *string              `json:"country"`
	Phone              *string              `json:"phone"`
	Email              *string              `json:"email"`
	Website            *string              `json:"website"`
	OperatingHours     *map[string]DayHours `json:"operating_hours"`
	Departments        *[]Department        `json:"departments"`
	Services           *[]string            `json:"services"`
	EmailNotifications *bool                `json:"email_notifications"`
	SMSNotifications   *bool                `json:"sms_notifications"`
	Timezone           *string              `json:"timezone"`
}

// Apply copies present fields onto s.
func (r *UpdateClinicSettingsRequest) Apply(s *ClinicSettings) {
	set(&s.ClinicName, r.ClinicName)
	set(&s.ClinicLogoURL, r.ClinicLogoURL)
	set(&s.AddressLine1, r.AddressLine1)
	set(&s.AddressLine2, r.AddressLine2)
	set(&s.City, r.City)
	set(&s.State, r.State)
	set(&s.ZipCode, r.ZipCode)
	set(&s.Country, r.Country)
	set(&s.Phone, r.Phone)
	set(&s.Email, r.Email)
	set(&s.Website, r.Website)
	set(&s.OperatingHours, r.OperatingHours)
	set(&s.Departments, r.Departments)
	set(&s.Services, r.Services)
	set(&s.EmailNotifications, r.EmailNotifications)
	set(&s.SMSNotifications, r.SMSNotifications)
	set(&s.Timezone, r.Timezone)
}

// WorkingDay is the bookable window for one weekday.
type WorkingDay struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

// BookingSettings is the singleton booking policy.
type BookingSettings struct {
	SlotDuration             int                   `json:"slot_duration"`
	BufferTime               int                   `json:"buffer_time"`
	MaxAppointmentsPerDay    int                   `json:"max_appointments_per_day"`
	MaxAppointmentsPerDoctor int                   `json:"max_appointments_per_doctor"`
	AdvanceBookingDays       int                   `json:"advance_booking_days"`
	MinBookingNoticeHours    int                   `json:"min_booking_notice_hours"`
	AutoApproveAppointments  bool                  `json:"auto_approve_appointments"`
	RequireStaffApproval     bool                  `json:"require_staff_approval"`
	AllowPatientCancellation bool                  `json:"allow_patient_cancellation"`
	CancellationNoticeHours  int                   `json:"cancellation_notice_hours"`
	SendConfirmationEmail    bool                  `json:"send_confirmation_email"`
	SendReminderEmail        bool                  `json:"send_reminder_email"`
	ReminderHoursBefore      int                   `json:"reminder_hours_before"`
	WorkingHours             map[string]WorkingDay `json:"working_hours"`
	BlockedDates             []string              `json:"blocked_dates"`
	UpdatedAt                time.Time             `json:"updated_at"`
}

// DefaultBookingSettings is written the first time booking settings are read.
func DefaultBookingSettings() *BookingSettings {
	weekday := WorkingDay{Start: "09:00", End: "17:00", Enabled: true}
	return &BookingSettings{
		SlotDuration:             30,
		BufferTime:               0,
		MaxAppointmentsPerDay:    20,
		MaxAppointmentsPerDoctor: 10,
		AdvanceBookingDays:       30,
		MinBookingNoticeHours:    24,
		AutoApproveAppointments:  false,
		RequireStaffApproval:     true,
		AllowPatientCancellation: true,
		CancellationNoticeHours:  24,
		SendConfirmationEmail:    true,
		SendReminderEmail:        true,
		ReminderHoursBefore:      24,
		WorkingHours: map[string]WorkingDay{
			"monday":    weekday,
			"tuesday":   weekday,
			"wednesday": weekday,
			"thursday":  weekday,
			"friday":    weekday,
			"saturday":  {Start: "09:00", End: "13:00", Enabled: true},
			"sunday":    {Start: "09:00", End: "13:00", Enabled: false},
		},
		BlockedDates: []string{},
	}
}

// UpdateBookingSettingsRequest is a partial update; nil fields are left untouched.
type UpdateBookingSettingsRequest struct {
	SlotDuration             *int                   `json:"slot_duration"`
	BufferTime               *int                   `json:"buffer_time"`
	MaxAppointmentsPerDay    *int                   `json:"max_appointments_per_day"`
	MaxAppointmentsPerDoctor *int                   `json:"max_appointments_per_doctor"`
	AdvanceBookingDays       *int                   `json:"advance_booking_days"`
	MinBookingNoticeHours    *int                   `json:"min_booking_notice_hours"`
	AutoApproveAppointments  *bool                  `json:"auto_approve_appointments"`
	RequireStaffApproval     *bool                  `json:"require_staff_approval"`
	AllowPatientCancellation *bool                  `json:"allow_patient_cancellation"`
	CancellationNoticeHours  *int                   `json:"cancellation_notice_hours"`
	SendConfirmationEmail    *bool                  `json:"send_confirmation_email"`
	SendReminderEmail        *bool                  `json:"send_reminder_email"`
	ReminderHoursBefore      *int                   `json:"reminder_hours_before"`
	WorkingHours             *map[string]WorkingDay `json:"working_hours"`
	BlockedDates             *[]string              `json:"blocked_dates"`
}

// Validate rejects negative durations and counts.
func (r *UpdateBookingSettingsRequest) Validate() error {
	for _, v := range []*int{r.SlotDuration, r.BufferTime, r.MaxAppointmentsPerDay, r.MaxAppointmentsPerDoctor,
		r.AdvanceBookingDays, r.MinBookingNoticeHours, r.CancellationNoticeHours, r.ReminderHoursBefore} {
		if v != nil && *v < 0 {
			return ErrInvalidSettings
		}
	}
	if r.SlotDuration != nil && *r.SlotDuration == 0 {
		return ErrInvalidSettings
	}
	return nil
}

// Apply copies present fields onto b.
func (r *UpdateBookingSettingsRequest) Apply(b *BookingSettings) {
	set(&b.SlotDuration, r.SlotDuration)
	set(&b.BufferTime, r.BufferTime)
	set(&b.MaxAppointmentsPerDay, r.MaxAppointmentsPerDay)
	set(&b.MaxAppointmentsPerDoctor, r.MaxAppointmentsPerDoctor)
	set(&b.AdvanceBookingDays, r.AdvanceBookingDays)
	set(&b.MinBookingNoticeHours, r.MinBookingNoticeHours)
	set(&b.AutoApproveAppointments, r.AutoApproveAppointments)
	set(&b.RequireStaffApproval, r.RequireStaffApproval)
	set(&b.AllowPatientCancellation, r.AllowPatientCancellation)
	set(&b.CancellationNoticeHours, r.CancellationNoticeHours)
	set(&b.SendConfirmationEmail, r.SendConfirmationEmail)
	set(&b.SendReminderEmail, r.SendReminderEmail)
	set(&b.ReminderHoursBefore, r.ReminderHoursBefore)
	set(&b.WorkingHours, r.WorkingHours)
	set(&b.BlockedDates, r.BlockedDates)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// rawJSON returns {} for empty availability blobs so responses always carry an object.
func rawJSON(b json.RawMessage) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage(`{}`)
	}
	return b
}

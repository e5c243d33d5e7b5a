// Package calendar synchronises appointments with an external calendar and
// answers slot-availability queries for the booking surface.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no calendar credentials are available.
var ErrNotConfigured = errors.New("calendar: provider not configured")

const (
	businessStartHour = 9
	businessEndHour   = 17
	slotDuration      = time.Hour
	eventDuration     = time.Hour
	defaultReason     = "General consultation"
	slotLayout        = "15:04"
)

// EventDetails is what the calendar needs to know about an appointment.
type EventDetails struct {
	PatientFirstName string
	PatientLastName  string
	PatientEmail     string
	PatientPhone     string
	Reason           string
	Status           string
	Start            time.Time
}

// Summary is the event title shown in the calendar.
func (d EventDetails) Summary() string {
	return fmt.Sprintf("Appointment - %s %s", d.PatientFirstName, d.PatientLastName)
}

// Description lists the patient contact and visit reason. The status line is
// only included once the appointment has one worth showing (updates).
func (d EventDetails) Description(withStatus bool) string {
	reason := d.Reason
	if strings.TrimSpace(reason) == "" {
		reason = defaultReason
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s %s\n", d.PatientFirstName, d.PatientLastName)
	fmt.Fprintf(&b, "Email: %s\n", d.PatientEmail)
	fmt.Fprintf(&b, "Phone: %s\n", d.PatientPhone)
	fmt.Fprintf(&b, "Reason: %s", reason)
	if withStatus {
		fmt.Fprintf(&b, "\nStatus: %s", d.Status)
	}
	return b.String()
}

// End is one hour after Start.
func (d EventDetails) End() time.Time {
	return d.Start.Add(eventDuration)
}

// Interval is a busy period in the calendar.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Provider is an external calendar.
type Provider interface {
	CreateEvent(ctx context.Context, details EventDetails) (string, error)
	UpdateEvent(ctx context.Context, eventID string, details EventDetails) error
	DeleteEvent(ctx context.Context, eventID string) error
	BusyIntervals(ctx context.Context, start, end time.Time) ([]Interval, error)
}

// BusinessHours returns the UTC window slots are offered in for date.
func BusinessHours(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, businessStartHour, 0, 0, 0, time.UTC)
	end := time.Date(y, m, d, businessEndHour, 0, 0, 0, time.UTC)
	return start, end
}

// AvailableSlots enumerates hourly slots within business hours that do not
// overlap any busy interval (half-open overlap test).
func AvailableSlots(date time.Time, busy []Interval) []string {
	start, end := BusinessHours(date)
	slots := []string{}
	for cur := start; cur.Before(end); cur = cur.Add(slotDuration) {
		slotEnd := cur.Add(slotDuration)
		free := true
		for _, ev := range busy {
			if cur.Before(ev.End) && slotEnd.After(ev.Start) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, cur.Format(slotLayout))
		}
	}
	return slots
}

// DefaultSlots is the list offered when the calendar cannot be consulted:
// half-hour starts from 09:00 to 16:00, with no 16:30 start.
func DefaultSlots() []string {
	var slots []string
	for hour := businessStartHour; hour < businessEndHour; hour++ {
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
		if hour < businessEndHour-1 {
			slots = append(slots, fmt.Sprintf("%02d:30", hour))
		}
	}
	return slots
}

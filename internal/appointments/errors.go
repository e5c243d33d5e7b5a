package appointments

import "errors"

var (
	// ErrAppointmentNotFound is returned when no appointment matches the id.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrMissingFields is returned when a required field is absent.
	ErrMissingFields = errors.New("patient_id, appointment_date and appointment_type are required")

	// ErrInvalidDate is returned when appointment_date is not an ISO-8601 timestamp.
	ErrInvalidDate = errors.New("appointment_date must be an ISO-8601 timestamp")

	// ErrInvalidStatus is returned for statuses outside the known set.
	ErrInvalidStatus = errors.New("status must be one of scheduled, confirmed, completed, cancelled")

	// ErrUnknownReference is returned when patient_id or doctor_id does not exist.
	ErrUnknownReference = errors.New("referenced patient or doctor does not exist")
)

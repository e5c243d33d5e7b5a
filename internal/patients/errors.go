package patients

import "errors"

var (
	// ErrPatientNotFound is returned when no patient matches the lookup.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrDuplicateEmail is returned when another patient already uses the email.
	ErrDuplicateEmail = errors.New("patient with this email already exists")

	// ErrMissingFields is returned when a required field is blank.
	ErrMissingFields = errors.New("first_name, last_name, email and phone are required")

	// ErrInvalidDate is returned when date_of_birth is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date_of_birth must be YYYY-MM-DD")
)

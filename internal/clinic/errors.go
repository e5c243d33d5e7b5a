package clinic

import "errors"

var (
	// ErrSettingNotFound is returned by a KV backend when the key has never been written.
	ErrSettingNotFound = errors.New("clinic: setting not found")

	// ErrInvalidSettings is returned for out-of-range booking values.
	ErrInvalidSettings = errors.New("booking settings values must be positive")

	// ErrDoctorNotFound is returned when no doctor matches the id.
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrDoctorNameRequired is returned when first or last name is blank.
	ErrDoctorNameRequired = errors.New("first_name and last_name are required")
)

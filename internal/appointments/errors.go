package appointments

import "errors"

var (
	// ErrNotFound is returned when an appointment is not found.
	ErrNotFound = errors.New("appointment not found")

	// ErrUnauthorized is returned when the caller does not own the
	// appointment. Deliberately generic; no detail leaks to the caller.
	ErrUnauthorized = errors.New("unauthorized action")

	// ErrDoctorUnavailable is returned when booking a doctor whose
	// availability flag is off.
	ErrDoctorUnavailable = errors.New("doctor not available")

	// ErrAlreadyCompleted refuses cancelling a fulfilled appointment.
	ErrAlreadyCompleted = errors.New("appointment already completed")

	// ErrAlreadyCancelled refuses completing a cancelled appointment.
	ErrAlreadyCancelled = errors.New("appointment already cancelled")

	// ErrMissingDetails is returned when booking input is absent.
	ErrMissingDetails = errors.New("missing details")
)

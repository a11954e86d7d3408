package doctors

import "errors"

var (
	// ErrNotFound is returned when a doctor is not found.
	ErrNotFound = errors.New("doctor not found")

	// ErrEmailTaken is returned when adding a doctor with a used email.
	ErrEmailTaken = errors.New("doctor already exists")

	// ErrInvalidCredentials is returned on a failed doctor login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingDetails is returned when required doctor fields are absent.
	ErrMissingDetails = errors.New("missing details")

	// ErrInvalidEmail is returned when the email does not parse.
	ErrInvalidEmail = errors.New("enter a valid email")

	// ErrWeakPassword is returned when the password is shorter than the minimum.
	ErrWeakPassword = errors.New("please enter a strong password")

	// ErrSlotTaken is returned when reserving a time label already booked for
	// the date.
	ErrSlotTaken = errors.New("slot not available")

	// ErrBadDateKey is returned for date keys not shaped day_month_year with
	// unpadded positive integers.
	ErrBadDateKey = errors.New("invalid slot date")

	// ErrBadTimeLabel is returned for empty time labels.
	ErrBadTimeLabel = errors.New("invalid slot time")
)

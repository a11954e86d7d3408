package users

import "errors"

var (
	// ErrMissingDetails is returned when name, email or password is absent.
	ErrMissingDetails = errors.New("missing details")

	// ErrInvalidEmail is returned when the email does not parse.
	ErrInvalidEmail = errors.New("enter a valid email")

	// ErrWeakPassword is returned when the password is shorter than the minimum.
	ErrWeakPassword = errors.New("please enter a strong password")

	// ErrEmailTaken is returned when registering an already used email.
	ErrEmailTaken = errors.New("user already exists")

	// ErrNotFound is returned when a user is not found.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

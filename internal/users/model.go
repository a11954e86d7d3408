package users

import (
	"net/mail"
	"strings"
	"time"

	"github.com/easyconsult/backend/internal/auth"
)

// Address is the structured postal address stored on a profile. It replaces
// the stringified JSON blobs the clients used to send, validated here at the
// boundary.
type Address struct {
	Line1 string `json:"line1" dynamodbav:"line1"`
	Line2 string `json:"line2,omitempty" dynamodbav:"line2,omitempty"`
}

// User is a patient account.
type User struct {
	ID           string    `json:"id" dynamodbav:"id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"passwordHash"`
	Phone        string    `json:"phone" dynamodbav:"phone"`
	DOB          string    `json:"dob" dynamodbav:"dob"`
	Gender       string    `json:"gender" dynamodbav:"gender"`
	Address      Address   `json:"address" dynamodbav:"address"`
	ImageURL     string    `json:"image" dynamodbav:"imageUrl"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"createdAt"`
}

// RegisterRequest is the payload for creating a patient account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration rules the original API enforced.
func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || r.Email == "" || r.Password == "" {
		return ErrMissingDetails
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrInvalidEmail
	}
	if len(r.Password) < auth.MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// LoginRequest is the payload for authenticating a patient.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries mutable profile fields.
type UpdateProfileRequest struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	DOB     string  `json:"dob"`
	Gender  string  `json:"gender"`
	Address Address `json:"address"`
}

// Validate rejects a partial profile, mirroring the original "Data Missing"
// rule.
func (r *UpdateProfileRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || r.Phone == "" || r.DOB == "" || r.Gender == "" {
		return ErrMissingDetails
	}
	return nil
}

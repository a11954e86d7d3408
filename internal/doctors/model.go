package doctors

import (
	"net/mail"
	"strings"
	"time"

	"github.com/easyconsult/backend/internal/auth"
)

// Address is the practice address shown to patients.
type Address struct {
	Line1 string `json:"line1" dynamodbav:"line1"`
	Line2 string `json:"line2,omitempty" dynamodbav:"line2,omitempty"`
}

// Doctor is a practitioner account created by an administrator.
type Doctor struct {
	ID           string    `json:"id" dynamodbav:"id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"passwordHash"`
	Speciality   string    `json:"speciality" dynamodbav:"speciality"`
	Degree       string    `json:"degree" dynamodbav:"degree"`
	Experience   string    `json:"experience" dynamodbav:"experience"`
	About        string    `json:"about" dynamodbav:"about"`
	Fees         int64     `json:"fees" dynamodbav:"fees"`
	Address      Address   `json:"address" dynamodbav:"address"`
	Available    bool      `json:"available" dynamodbav:"available"`
	ImageURL     string    `json:"image" dynamodbav:"imageUrl"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"createdAt"`
}

// PublicProfile is a doctor as shown to patients: no credentials, with the
// booked-slot view the booking page needs.
type PublicProfile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Speciality  string  `json:"speciality"`
	Degree      string  `json:"degree"`
	Experience  string  `json:"experience"`
	About       string  `json:"about"`
	Fees        int64   `json:"fees"`
	Address     Address `json:"address"`
	Available   bool    `json:"available"`
	ImageURL    string  `json:"image"`
	SlotsBooked Ledger  `json:"slots_booked"`
}

// Public strips credentials and attaches the slot view.
func (d *Doctor) Public(ledger Ledger) PublicProfile {
	if ledger == nil {
		ledger = Ledger{}
	}
	return PublicProfile{
		ID:          d.ID,
		Name:        d.Name,
		Speciality:  d.Speciality,
		Degree:      d.Degree,
		Experience:  d.Experience,
		About:       d.About,
		Fees:        d.Fees,
		Address:     d.Address,
		Available:   d.Available,
		ImageURL:    d.ImageURL,
		SlotsBooked: ledger,
	}
}

// AddRequest is the payload for the administrative add-doctor operation.
type AddRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Speciality string  `json:"speciality"`
	Degree     string  `json:"degree"`
	Experience string  `json:"experience"`
	About      string  `json:"about"`
	Fees       int64   `json:"fees"`
	Address    Address `json:"address"`
}

// Validate checks the add-doctor rules the original API enforced.
func (r *AddRequest) Validate() error {
	switch "" {
	case strings.TrimSpace(r.Name), r.Email, r.Password, r.Speciality, r.Degree, r.Experience, r.About:
		return ErrMissingDetails
	}
	if r.Fees <= 0 {
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

// UpdateProfileRequest carries the doctor-editable fields.
type UpdateProfileRequest struct {
	Fees      int64   `json:"fees"`
	Address   Address `json:"address"`
	Available bool    `json:"available"`
}

// LoginRequest is the payload for authenticating a doctor.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

package appointments

import (
	"strings"
	"time"

	"github.com/easyconsult/backend/internal/doctors"
	"github.com/easyconsult/backend/internal/users"
)

// UserSnapshot is the patient as they were at booking time. It is immutable
// by design: later profile edits do not touch it, so receipts and histories
// show what the parties agreed to.
type UserSnapshot struct {
	ID       string        `json:"id" dynamodbav:"id"`
	Name     string        `json:"name" dynamodbav:"name"`
	Email    string        `json:"email" dynamodbav:"email"`
	Phone    string        `json:"phone" dynamodbav:"phone"`
	DOB      string        `json:"dob" dynamodbav:"dob"`
	Gender   string        `json:"gender" dynamodbav:"gender"`
	Address  users.Address `json:"address" dynamodbav:"address"`
	ImageURL string        `json:"image" dynamodbav:"imageUrl"`
}

// DoctorSnapshot is the practitioner as they were at booking time, fee
// included. Deliberately stale, same as UserSnapshot.
type DoctorSnapshot struct {
	ID         string          `json:"id" dynamodbav:"id"`
	Name       string          `json:"name" dynamodbav:"name"`
	Email      string          `json:"email" dynamodbav:"email"`
	Speciality string          `json:"speciality" dynamodbav:"speciality"`
	Degree     string          `json:"degree" dynamodbav:"degree"`
	Experience string          `json:"experience" dynamodbav:"experience"`
	Fees       int64           `json:"fees" dynamodbav:"fees"`
	Address    doctors.Address `json:"address" dynamodbav:"address"`
	ImageURL   string          `json:"image" dynamodbav:"imageUrl"`
}

func snapshotUser(u *users.User) UserSnapshot {
	return UserSnapshot{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		DOB:      u.DOB,
		Gender:   u.Gender,
		Address:  u.Address,
		ImageURL: u.ImageURL,
	}
}

func snapshotDoctor(d *doctors.Doctor) DoctorSnapshot {
	return DoctorSnapshot{
		ID:         d.ID,
		Name:       d.Name,
		Email:      d.Email,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Experience: d.Experience,
		Fees:       d.Fees,
		Address:    d.Address,
		ImageURL:   d.ImageURL,
	}
}

// Appointment is one booked consultation slot.
type Appointment struct {
	ID          string         `json:"id" dynamodbav:"id"`
	UserID      string         `json:"userId" dynamodbav:"userId"`
	DocID       string         `json:"docId" dynamodbav:"docId"`
	UserData    UserSnapshot   `json:"userData" dynamodbav:"userData"`
	DocData     DoctorSnapshot `json:"docData" dynamodbav:"docData"`
	SlotDate    string         `json:"slotDate" dynamodbav:"slotDate"`
	SlotTime    string         `json:"slotTime" dynamodbav:"slotTime"`
	Amount      int64          `json:"amount" dynamodbav:"amount"`
	BookedAt    time.Time      `json:"date" dynamodbav:"bookedAt"`
	Cancelled   bool           `json:"cancelled" dynamodbav:"cancelled"`
	IsCompleted bool           `json:"isCompleted" dynamodbav:"isCompleted"`
	Payment     bool           `json:"payment" dynamodbav:"payment"`
}

// BookRequest is the payload for booking a slot. The user id comes from the
// bearer token, not the body.
type BookRequest struct {
	DocID    string `json:"docId"`
	SlotDate string `json:"slotDate"`
	SlotTime string `json:"slotTime"`
}

// Validate rejects empty booking input before any store round-trip.
func (r *BookRequest) Validate() error {
	if r.DocID == "" || strings.TrimSpace(r.SlotDate) == "" || strings.TrimSpace(r.SlotTime) == "" {
		return ErrMissingDetails
	}
	return nil
}

// DoctorDashboard is the doctor-panel summary.
type DoctorDashboard struct {
	Earnings           int64          `json:"earnings"`
	Appointments       int            `json:"appointments"`
	Patients           int            `json:"patients"`
	LatestAppointments []*Appointment `json:"latestAppointments"`
}

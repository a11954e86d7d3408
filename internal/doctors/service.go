package doctors

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/easyconsult/backend/internal/auth"
	"github.com/easyconsult/backend/pkg/logging"
)

type tokenIssuer interface {
	Issue(subject string, role auth.Role) (string, error)
}

// ImageStore uploads profile images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// Service implements doctor account and profile workflows. Slot mutations are
// driven by the booking workflows in the appointments package; this service
// only exposes the ledger view.
type Service struct {
	repo   Repository
	tokens tokenIssuer
	images ImageStore
	logger *logging.Logger
}

// NewService constructs a doctors service.
func NewService(repo Repository, tokens tokenIssuer, images ImageStore, logger *logging.Logger) *Service {
	if repo == nil {
		panic("doctors: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, tokens: tokens, images: images, logger: logger}
}

// ProfileImage is an uploaded practitioner photo.
type ProfileImage struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Add creates a practitioner account. Administrative action; the caller is
// authorized upstream.
func (s *Service) Add(ctx context.Context, req *AddRequest, image *ProfileImage) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	doctor := &Doctor{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Speciality:   req.Speciality,
		Degree:       req.Degree,
		Experience:   req.Experience,
		About:        req.About,
		Fees:         req.Fees,
		Address:      req.Address,
		Available:    true,
		CreatedAt:    time.Now().UTC(),
	}

	if image != nil {
		if s.images == nil {
			return nil, fmt.Errorf("doctors: image storage not configured")
		}
		url, err := s.images.Upload(ctx, image.Filename, image.ContentType, image.Body)
		if err != nil {
			return nil, fmt.Errorf("doctors: upload profile image: %w", err)
		}
		doctor.ImageURL = url
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}
	s.logger.Info("doctor added", "doctor_id", doctor.ID, "speciality", doctor.Speciality)
	return doctor, nil
}

// Login authenticates a doctor and returns a signed token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, error) {
	doctor, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(doctor.PasswordHash, req.Password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(doctor.ID, auth.RoleDoctor)
}

// List returns every doctor's public profile with its booked-slot view, for
// the patient-facing catalogue.
func (s *Service) List(ctx context.Context) ([]PublicProfile, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PublicProfile, 0, len(records))
	for _, d := range records {
		ledger, err := s.repo.Ledger(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, d.Public(ledger))
	}
	return out, nil
}

// Profile returns the doctor's own record.
func (s *Service) Profile(ctx context.Context, doctorID string) (*Doctor, error) {
	return s.repo.GetByID(ctx, doctorID)
}

// UpdateProfile applies the doctor-editable fields.
func (s *Service) UpdateProfile(ctx context.Context, doctorID string, req *UpdateProfileRequest) error {
	return s.repo.UpdateProfile(ctx, doctorID, req)
}

// ToggleAvailability flips the availability flag and reports the new value.
func (s *Service) ToggleAvailability(ctx context.Context, doctorID string) (bool, error) {
	doctor, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return false, err
	}
	next := !doctor.Available
	if err := s.repo.SetAvailability(ctx, doctorID, next); err != nil {
		return false, err
	}
	return next, nil
}

// Delete removes a doctor. Appointments keep the snapshot captured when they
// were booked; nothing else cascades.
func (s *Service) Delete(ctx context.Context, doctorID string) error {
	if err := s.repo.Delete(ctx, doctorID); err != nil {
		return err
	}
	s.logger.Info("doctor removed", "doctor_id", doctorID)
	return nil
}

// Count reports how many doctors exist, for the admin dashboard.
func (s *Service) Count(ctx context.Context) (int, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

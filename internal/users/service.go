package users

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/easyconsult/backend/internal/auth"
	"github.com/easyconsult/backend/pkg/logging"
)

// Notifier sends the transactional mails the account flows trigger. All calls
// are best-effort; implementations must never block the caller on delivery.
type Notifier interface {
	Welcome(ctx context.Context, name, email string)
	LoginAlert(ctx context.Context, name, email string)
	PasswordResetCode(ctx context.Context, name, email, code string)
	PasswordResetConfirmed(ctx context.Context, name, email string)
}

// CodeStore issues and checks password-reset verification codes.
type CodeStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) error
	Invalidate(ctx context.Context, email string) error
}

// ImageStore uploads profile images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type tokenIssuer interface {
	Issue(subject string, role auth.Role) (string, error)
}

// Service implements the patient account workflows.
type Service struct {
	repo     Repository
	tokens   tokenIssuer
	codes    CodeStore
	notifier Notifier
	images   ImageStore
	logger   *logging.Logger
}

// NewService constructs a users service.
func NewService(repo Repository, tokens tokenIssuer, codes CodeStore, notifier Notifier, images ImageStore, logger *logging.Logger) *Service {
	if repo == nil {
		panic("users: repository required")
	}
	if tokens == nil {
		panic("users: token issuer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, tokens: tokens, codes: codes, notifier: notifier, images: images, logger: logger}
}

// Register creates an account and returns a signed token.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user.ID, auth.RoleUser)
	if err != nil {
		return "", err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	if s.notifier != nil {
		s.notifier.Welcome(ctx, user.Name, user.Email)
	}
	return token, nil
}

// Login authenticates by email and password and returns a signed token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, auth.RoleUser)
	if err != nil {
		return "", err
	}

	if s.notifier != nil {
		s.notifier.LoginAlert(ctx, user.Name, user.Email)
	}
	return token, nil
}

// RequestPasswordReset issues a verification code and mails it.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if s.codes == nil {
		return fmt.Errorf("users: reset codes not configured")
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := s.codes.Issue(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("users: issue reset code: %w", err)
	}
	if s.notifier != nil {
		s.notifier.PasswordResetCode(ctx, user.Name, user.Email, code)
	}
	return nil
}

// VerifyResetCode checks a code without consuming it.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) error {
	if s.codes == nil {
		return fmt.Errorf("users: reset codes not configured")
	}
	return s.codes.Verify(ctx, normalizeEmail(email), code)
}

// ResetPassword verifies the code, replaces the password and clears the code.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if s.codes == nil {
		return fmt.Errorf("users: reset codes not configured")
	}
	if len(newPassword) < auth.MinPasswordLength {
		return ErrWeakPassword
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.codes.Verify(ctx, user.Email, code); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.codes.Invalidate(ctx, user.Email); err != nil {
		s.logger.Warn("failed to invalidate used reset code", "error", err)
	}
	if s.notifier != nil {
		s.notifier.PasswordResetConfirmed(ctx, user.Name, user.Email)
	}
	return nil
}

// Profile returns the account record for the given user.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile applies profile fields and, when image is non-nil, uploads a
// new profile picture.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest, image *ProfileImage) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateProfile(ctx, userID, req); err != nil {
		return err
	}
	if image != nil {
		if s.images == nil {
			return fmt.Errorf("users: image storage not configured")
		}
		url, err := s.images.Upload(ctx, image.Filename, image.ContentType, image.Body)
		if err != nil {
			return fmt.Errorf("users: upload profile image: %w", err)
		}
		if err := s.repo.UpdateImage(ctx, userID, url); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of registered patients.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// ProfileImage is an uploaded profile picture.
type ProfileImage struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

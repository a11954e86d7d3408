// Package otp owns the password-reset verification codes. Codes live in
// redis keyed by email; expiry is checked on read rather than relying on the
// key vanishing, so an expired code answers "expired" instead of "not found".
package otp

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/easyconsult/backend/pkg/logging"
)

var (
	// ErrCodeNotFound is returned when no code was issued for the email.
	ErrCodeNotFound = errors.New("no OTP found for this email, please request a new one")

	// ErrCodeExpired is returned when the code outlived its TTL.
	ErrCodeExpired = errors.New("OTP has expired")

	// ErrCodeMismatch is returned when the code does not match.
	ErrCodeMismatch = errors.New("invalid OTP")
)

const codeLength = 6

// retention keeps expired entries around long enough to answer "expired"
// before redis drops the key entirely.
const retention = time.Hour

// Store issues and verifies one-time codes backed by redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewStore creates a code store. ttl is how long an issued code stays valid.
func NewStore(client *redis.Client, ttl time.Duration, logger *logging.Logger) *Store {
	if client == nil {
		panic("otp: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{client: client, ttl: ttl, logger: logger}
}

type entry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

func key(email string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(email))
}

// Issue generates a fresh numeric code for the email, replacing any earlier
// one.
func (s *Store) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode(codeLength)
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}

	payload, err := json.Marshal(entry{
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("otp: marshal entry: %w", err)
	}

	if err := s.client.Set(ctx, key(email), payload, s.ttl+retention).Err(); err != nil {
		return "", fmt.Errorf("otp: store code: %w", err)
	}
	return code, nil
}

// Verify checks the code for the email without consuming it.
func (s *Store) Verify(ctx context.Context, email, code string) error {
	raw, err := s.client.Get(ctx, key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("otp: load code: %w", err)
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return fmt.Errorf("otp: decode entry: %w", err)
	}
	if time.Now().UTC().After(e.ExpiresAt) {
		if err := s.client.Del(ctx, key(email)).Err(); err != nil {
			s.logger.Warn("otp: failed to drop expired code", "error", err)
		}
		return ErrCodeExpired
	}
	if e.Code != strings.TrimSpace(code) {
		return ErrCodeMismatch
	}
	return nil
}

// Invalidate removes any issued code for the email.
func (s *Store) Invalidate(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("otp: invalidate code: %w", err)
	}
	return nil
}

func generateCode(length int) (string, error) {
	const digits = "0123456789"
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		b.WriteByte(digits[n.Int64()])
	}
	return b.String(), nil
}

package users

import (
	"context"
	"strings"
	"sync"
)

// Repository defines the interface for patient storage.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) error
	UpdateImage(ctx context.Context, id, imageURL string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Count(ctx context.Context) (int, error)
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests and local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	users   map[string]*User
	byEmail map[string]string
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new user, enforcing email uniqueness.
func (r *InMemoryRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(user.Email)
	if _, taken := r.byEmail[key]; taken {
		return ErrEmailTaken
	}
	clone := *user
	r.users[user.ID] = &clone
	r.byEmail[key] = user.ID
	return nil
}

// GetByID retrieves a user by id.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// GetByEmail retrieves a user by email.
func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *r.users[id]
	return &clone, nil
}

// UpdateProfile applies mutable profile fields.
func (r *InMemoryRepository) UpdateProfile(_ context.Context, id string, req *UpdateProfileRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Name = req.Name
	user.Phone = req.Phone
	user.DOB = req.DOB
	user.Gender = req.Gender
	user.Address = req.Address
	return nil
}

// UpdateImage sets the profile image reference.
func (r *InMemoryRepository) UpdateImage(_ context.Context, id, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.ImageURL = imageURL
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *InMemoryRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// Count returns the number of registered users.
func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

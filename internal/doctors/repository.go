package doctors

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Repository defines the interface for doctor storage, including the
// per-doctor slot ledger. ReserveSlot must be atomic for one doctor+date:
// two concurrent reservations of the same time label must not both succeed.
type Repository interface {
	Create(ctx context.Context, doctor *Doctor) error
	GetByID(ctx context.Context, id string) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) error
	SetAvailability(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error

	Ledger(ctx context.Context, doctorID string) (Ledger, error)
	ReserveSlot(ctx context.Context, doctorID, dateKey, timeLabel string) error
	ReleaseSlot(ctx context.Context, doctorID, dateKey, timeLabel string) error
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests and local development. A single mutex stands in for the conditional
// writes the DynamoDB implementation uses.
type InMemoryRepository struct {
	mu      sync.RWMutex
	doctors map[string]*Doctor
	byEmail map[string]string
	ledgers map[string]Ledger
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		doctors: make(map[string]*Doctor),
		byEmail: make(map[string]string),
		ledgers: make(map[string]Ledger),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new doctor, enforcing email uniqueness.
func (r *InMemoryRepository) Create(_ context.Context, doctor *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(doctor.Email)
	if _, taken := r.byEmail[key]; taken {
		return ErrEmailTaken
	}
	clone := *doctor
	r.doctors[doctor.ID] = &clone
	r.byEmail[key] = doctor.ID
	r.ledgers[doctor.ID] = Ledger{}
	return nil
}

// GetByID retrieves a doctor by id.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doctor, ok := r.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *doctor
	return &clone, nil
}

// GetByEmail retrieves a doctor by email.
func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *r.doctors[id]
	return &clone, nil
}

// List returns all doctors ordered by name.
func (r *InMemoryRepository) List(_ context.Context) ([]*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		clone := *d
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateProfile applies the doctor-editable fields.
func (r *InMemoryRepository) UpdateProfile(_ context.Context, id string, req *UpdateProfileRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doctor, ok := r.doctors[id]
	if !ok {
		return ErrNotFound
	}
	doctor.Fees = req.Fees
	doctor.Address = req.Address
	doctor.Available = req.Available
	return nil
}

// SetAvailability flips the availability flag.
func (r *InMemoryRepository) SetAvailability(_ context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doctor, ok := r.doctors[id]
	if !ok {
		return ErrNotFound
	}
	doctor.Available = available
	return nil
}

// Delete removes the doctor and its ledger. Appointments keep their
// snapshots; nothing cascades.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doctor, ok := r.doctors[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byEmail, normalizeEmail(doctor.Email))
	delete(r.doctors, id)
	delete(r.ledgers, id)
	return nil
}

// Ledger returns a copy of the doctor's booked-slot view.
func (r *InMemoryRepository) Ledger(_ context.Context, doctorID string) (Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.doctors[doctorID]; !ok {
		return nil, ErrNotFound
	}
	return r.ledgers[doctorID].Clone(), nil
}

// ReserveSlot books the slot under the repository lock, so a concurrent
// reservation of the same label fails with ErrSlotTaken.
func (r *InMemoryRepository) ReserveSlot(_ context.Context, doctorID, dateKey, timeLabel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doctors[doctorID]; !ok {
		return ErrNotFound
	}
	return r.ledgers[doctorID].Reserve(dateKey, timeLabel)
}

// ReleaseSlot frees the slot; releasing an absent slot is a no-op.
func (r *InMemoryRepository) ReleaseSlot(_ context.Context, doctorID, dateKey, timeLabel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doctors[doctorID]; !ok {
		return ErrNotFound
	}
	r.ledgers[doctorID].Release(dateKey, timeLabel)
	return nil
}

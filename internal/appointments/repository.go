package appointments

import (
	"context"
	"sort"
	"sync"
)

// Repository defines the interface for appointment storage.
type Repository interface {
	Create(ctx context.Context, appointment *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error)
	ListAll(ctx context.Context) ([]*Appointment, error)
	MarkCancelled(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests and local development.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[string]*Appointment
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{appointments: make(map[string]*Appointment)}
}

// Create stores a new appointment.
func (r *InMemoryRepository) Create(_ context.Context, appointment *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *appointment
	r.appointments[appointment.ID] = &clone
	return nil
}

// GetByID retrieves an appointment by id.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *appointment
	return &clone, nil
}

// ListByUser returns the user's appointments, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]*Appointment, error) {
	return r.list(func(a *Appointment) bool { return a.UserID == userID }), nil
}

// ListByDoctor returns the doctor's appointments, newest first.
func (r *InMemoryRepository) ListByDoctor(_ context.Context, doctorID string) ([]*Appointment, error) {
	return r.list(func(a *Appointment) bool { return a.DocID == doctorID }), nil
}

// ListAll returns every appointment, newest first.
func (r *InMemoryRepository) ListAll(_ context.Context) ([]*Appointment, error) {
	return r.list(func(*Appointment) bool { return true }), nil
}

// MarkCancelled sets the cancelled flag. Fulfilled appointments stay fulfilled.
func (r *InMemoryRepository) MarkCancelled(_ context.Context, id string) error {
	return r.mark(id, func(a *Appointment) error {
		if a.IsCompleted {
			return ErrAlreadyCompleted
		}
		a.Cancelled = true
		return nil
	})
}

// MarkCompleted sets the fulfilled flag. Cancelled appointments stay cancelled.
func (r *InMemoryRepository) MarkCompleted(_ context.Context, id string) error {
	return r.mark(id, func(a *Appointment) error {
		if a.Cancelled {
			return ErrAlreadyCancelled
		}
		a.IsCompleted = true
		return nil
	})
}

// MarkPaid records a confirmed payment.
func (r *InMemoryRepository) MarkPaid(_ context.Context, id string) error {
	return r.mark(id, func(a *Appointment) error {
		a.Payment = true
		return nil
	})
}

func (r *InMemoryRepository) list(match func(*Appointment) bool) []*Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, a := range r.appointments {
		if match(a) {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.After(out[j].BookedAt) })
	return out
}

func (r *InMemoryRepository) mark(id string, apply func(*Appointment) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appointment, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	return apply(appointment)
}

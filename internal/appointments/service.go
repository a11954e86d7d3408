package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/easyconsult/backend/internal/auth"
	"github.com/easyconsult/backend/internal/doctors"
	"github.com/easyconsult/backend/internal/observability/metrics"
	"github.com/easyconsult/backend/internal/users"
	"github.com/easyconsult/backend/pkg/logging"
)

var appointmentsTracer = otel.Tracer("easyconsult.internal.appointments")

// Notifier sends the transactional mails booking lifecycle events trigger.
// All calls are fire-and-forget from the service's point of view.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appointment *Appointment)
	AppointmentCancelledByUser(ctx context.Context, appointment *Appointment)
	AppointmentCancelledByDoctor(ctx context.Context, appointment *Appointment)
	AppointmentCompleted(ctx context.Context, appointment *Appointment)
}

// Service implements the booking lifecycle: reserve a slot, record the
// appointment, and walk it through its one-way cancelled/completed states.
type Service struct {
	repo     Repository
	doctors  doctors.Repository
	users    users.Repository
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewService constructs an appointments service.
func NewService(repo Repository, doctorRepo doctors.Repository, userRepo users.Repository, notifier Notifier, bookingMetrics *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if doctorRepo == nil {
		panic("appointments: doctor repository required")
	}
	if userRepo == nil {
		panic("appointments: user repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		doctors:  doctorRepo,
		users:    userRepo,
		notifier: notifier,
		metrics:  bookingMetrics,
		logger:   logger.Component("appointments"),
	}
}

// Book reserves the requested slot and records the appointment. The slot is
// claimed first with a conditional write, so two callers racing for the same
// label cannot both succeed; if persisting the appointment then fails, the
// reservation is released again.
func (s *Service) Book(ctx context.Context, userID string, req *BookRequest) (*Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()

	if err := req.Validate(); err != nil {
		s.metrics.ObserveBooking("invalid")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("easyconsult.user_id", userID),
		attribute.String("easyconsult.doc_id", req.DocID),
	)

	doctor, err := s.doctors.GetByID(ctx, req.DocID)
	if err != nil {
		if errors.Is(err, doctors.ErrNotFound) {
			s.metrics.ObserveBooking("doctor_missing")
		}
		return nil, err
	}
	if !doctor.Available {
		s.metrics.ObserveBooking("doctor_unavailable")
		return nil, ErrDoctorUnavailable
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.doctors.ReserveSlot(ctx, doctor.ID, req.SlotDate, req.SlotTime); err != nil {
		if errors.Is(err, doctors.ErrSlotTaken) {
			s.metrics.ObserveBooking("slot_taken")
		}
		span.RecordError(err)
		return nil, err
	}

	appointment := &Appointment{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		DocID:    doctor.ID,
		UserData: snapshotUser(user),
		DocData:  snapshotDoctor(doctor),
		SlotDate: req.SlotDate,
		SlotTime: req.SlotTime,
		Amount:   doctor.Fees,
		BookedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, appointment); err != nil {
		span.RecordError(err)
		if releaseErr := s.doctors.ReleaseSlot(ctx, doctor.ID, req.SlotDate, req.SlotTime); releaseErr != nil {
			s.logger.Error("failed to release slot after create failure",
				"doc_id", doctor.ID, "slot_date", req.SlotDate, "slot_time", req.SlotTime, "error", releaseErr)
		}
		s.metrics.ObserveBooking("store_error")
		return nil, err
	}

	s.metrics.ObserveBooking("booked")
	s.logger.Info("appointment booked",
		"appointment_id", appointment.ID, "user_id", user.ID, "doc_id", doctor.ID,
		"slot_date", req.SlotDate, "slot_time", req.SlotTime)
	if s.notifier != nil {
		s.notifier.AppointmentBooked(ctx, appointment)
	}
	return appointment, nil
}

// Cancel flips an appointment to cancelled and frees its slot. Users may only
// cancel their own appointments and doctors their own schedule; admins may
// cancel any. Cancelling twice is a no-op, cancelling a completed appointment
// is rejected.
func (s *Service) Cancel(ctx context.Context, callerID string, role auth.Role, appointmentID string) error {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("easyconsult.appointment_id", appointmentID))

	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if err := authorize(appointment, callerID, role); err != nil {
		return err
	}
	if appointment.IsCompleted {
		return ErrAlreadyCompleted
	}
	if appointment.Cancelled {
		return nil
	}

	if err := s.repo.MarkCancelled(ctx, appointmentID); err != nil {
		span.RecordError(err)
		return err
	}
	// Release is idempotent, so a retry after a partial failure is safe.
	if err := s.doctors.ReleaseSlot(ctx, appointment.DocID, appointment.SlotDate, appointment.SlotTime); err != nil {
		s.logger.Error("failed to release slot on cancel",
			"appointment_id", appointmentID, "doc_id", appointment.DocID, "error", err)
	}

	s.metrics.ObserveCancellation(string(role))
	s.logger.Info("appointment cancelled",
		"appointment_id", appointmentID, "actor_role", string(role), "actor_id", callerID)
	if s.notifier != nil {
		appointment.Cancelled = true
		if role == auth.RoleDoctor || role == auth.RoleAdmin {
			s.notifier.AppointmentCancelledByDoctor(ctx, appointment)
		} else {
			s.notifier.AppointmentCancelledByUser(ctx, appointment)
		}
	}
	return nil
}

// Complete marks an appointment fulfilled. Only the doctor it belongs to may
// complete it. Completing twice is a no-op, completing a cancelled
// appointment is rejected. The slot stays in the ledger: the visit happened.
func (s *Service) Complete(ctx context.Context, doctorID, appointmentID string) error {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.complete")
	defer span.End()
	span.SetAttributes(attribute.String("easyconsult.appointment_id", appointmentID))

	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appointment.DocID != doctorID {
		return ErrUnauthorized
	}
	if appointment.Cancelled {
		return ErrAlreadyCancelled
	}
	if appointment.IsCompleted {
		return nil
	}

	if err := s.repo.MarkCompleted(ctx, appointmentID); err != nil {
		span.RecordError(err)
		return err
	}

	s.metrics.ObserveCompletion()
	s.logger.Info("appointment completed", "appointment_id", appointmentID, "doc_id", doctorID)
	if s.notifier != nil {
		appointment.IsCompleted = true
		s.notifier.AppointmentCompleted(ctx, appointment)
	}
	return nil
}

// ListForUser returns the caller's appointments, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Appointment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListForDoctor returns the doctor's appointments, newest first.
func (s *Service) ListForDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// ListAll returns every appointment for the admin panel, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*Appointment, error) {
	return s.repo.ListAll(ctx)
}

// DoctorDashboard aggregates the doctor-panel summary. Earnings count
// appointments that were completed or paid online; patients are distinct
// users across all of the doctor's appointments.
func (s *Service) DoctorDashboard(ctx context.Context, doctorID string) (*DoctorDashboard, error) {
	appointments, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	dashboard := &DoctorDashboard{Appointments: len(appointments)}
	seen := make(map[string]struct{})
	for _, appointment := range appointments {
		if appointment.IsCompleted || appointment.Payment {
			dashboard.Earnings += appointment.Amount
		}
		if _, ok := seen[appointment.UserID]; !ok {
			seen[appointment.UserID] = struct{}{}
			dashboard.Patients++
		}
	}
	dashboard.LatestAppointments = appointments
	if len(dashboard.LatestAppointments) > 5 {
		dashboard.LatestAppointments = dashboard.LatestAppointments[:5]
	}
	return dashboard, nil
}

func authorize(appointment *Appointment, callerID string, role auth.Role) error {
	switch role {
	case auth.RoleAdmin:
		return nil
	case auth.RoleDoctor:
		if appointment.DocID != callerID {
			return ErrUnauthorized
		}
	default:
		if appointment.UserID != callerID {
			return ErrUnauthorized
		}
	}
	return nil
}

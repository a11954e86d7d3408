package payments

import (
	"context"
	"errors"

	"github.com/easyconsult/backend/internal/appointments"
	"github.com/easyconsult/backend/pkg/logging"
)

var (
	// ErrAppointmentUnavailable is returned when paying for a cancelled or
	// unknown appointment.
	ErrAppointmentUnavailable = errors.New("appointment cancelled or not found")

	// ErrPaymentNotCaptured is returned when verification finds the order
	// unpaid.
	ErrPaymentNotCaptured = errors.New("payment failed")

	// ErrGatewayUnavailable is returned when no payment gateway is
	// configured.
	ErrGatewayUnavailable = errors.New("payments unavailable")
)

// Service creates gateway orders for appointments and marks them paid once
// the gateway confirms capture. The appointment id rides along as the order
// receipt, which is how verification finds its way back.
type Service struct {
	repo    appointments.Repository
	gateway Gateway
	logger  *logging.Logger
}

// NewService constructs a payments service.
func NewService(repo appointments.Repository, gateway Gateway, logger *logging.Logger) *Service {
	if repo == nil {
		panic("payments: appointments repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, gateway: gateway, logger: logger.Component("payments")}
}

// CreateOrder opens a gateway order for the caller's appointment. The amount
// is the consultation fee frozen at booking time, converted to paise.
func (s *Service) CreateOrder(ctx context.Context, userID, appointmentID string) (*Order, error) {
	if s.gateway == nil {
		return nil, ErrGatewayUnavailable
	}
	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			return nil, ErrAppointmentUnavailable
		}
		return nil, err
	}
	if appointment.UserID != userID {
		return nil, appointments.ErrUnauthorized
	}
	if appointment.Cancelled {
		return nil, ErrAppointmentUnavailable
	}

	order, err := s.gateway.CreateOrder(appointment.Amount*100, appointment.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment order created",
		"appointment_id", appointment.ID, "order_id", order.ID, "amount", order.Amount)
	return order, nil
}

// Verify fetches the order and, if the gateway reports it paid, marks the
// appointment's payment flag. The flag write is idempotent, so re-verifying
// a paid order succeeds.
func (s *Service) Verify(ctx context.Context, orderID string) error {
	if s.gateway == nil {
		return ErrGatewayUnavailable
	}
	order, err := s.gateway.FetchOrder(orderID)
	if err != nil {
		return err
	}
	if order.Status != "paid" {
		return ErrPaymentNotCaptured
	}
	if err := s.repo.MarkPaid(ctx, order.Receipt); err != nil {
		return err
	}
	s.logger.Info("payment verified", "order_id", orderID, "appointment_id", order.Receipt)
	return nil
}

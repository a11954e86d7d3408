package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/easyconsult/backend/internal/api/respond"
	"github.com/easyconsult/backend/internal/appointments"
	"github.com/easyconsult/backend/internal/http/middleware"
	"github.com/easyconsult/backend/pkg/logging"
)

// Handler exposes the patient-panel payment endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a payments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

var knownErrors = []error{
	ErrAppointmentUnavailable, ErrPaymentNotCaptured, ErrGatewayUnavailable,
	appointments.ErrUnauthorized, appointments.ErrNotFound,
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			respond.Failure(w, known.Error())
			return
		}
	}
	h.logger.Error("payments: request failed", "error", err)
	respond.Failure(w, "something went wrong, please try again later")
}

// CreateOrder handles POST /api/user/payment-razorpay.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.Failure(w, appointments.ErrUnauthorized.Error())
		return
	}
	var req struct {
		AppointmentID string `json:"appointmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	order, err := h.service.CreateOrder(r.Context(), principal.ID, req.AppointmentID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Data(w, "order", order)
}

// Verify handles POST /api/user/verify-razorpay.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"razorpay_order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.service.Verify(r.Context(), req.OrderID); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "payment successful")
}

package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/easyconsult/backend/internal/api/respond"
	"github.com/easyconsult/backend/internal/doctors"
	"github.com/easyconsult/backend/internal/http/middleware"
	"github.com/easyconsult/backend/pkg/logging"
)

// Handler exposes the booking endpoints for both the patient and doctor
// panels. Role enforcement happens in the router middleware; the handler only
// reads the principal off the context.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

var knownErrors = []error{
	ErrMissingDetails, ErrNotFound, ErrUnauthorized, ErrDoctorUnavailable,
	ErrAlreadyCompleted, ErrAlreadyCancelled,
	doctors.ErrNotFound, doctors.ErrSlotTaken, doctors.ErrBadDateKey, doctors.ErrBadTimeLabel,
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			respond.Failure(w, known.Error())
			return
		}
	}
	h.logger.Error("appointments: request failed", "error", err)
	respond.Failure(w, "something went wrong, please try again later")
}

// Book handles POST /api/user/book-appointment.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.Failure(w, ErrUnauthorized.Error())
		return
	}
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if _, err := h.service.Book(r.Context(), principal.ID, &req); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "appointment booked")
}

// ListMine handles GET /api/user/appointments.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.Failure(w, ErrUnauthorized.Error())
		return
	}
	appointments, err := h.service.ListForUser(r.Context(), principal.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Data(w, "appointments", appointments)
}

// Cancel handles POST /api/user/cancel-appointment and the doctor-panel
// equivalent; the caller's role decides what they may cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.Failure(w, ErrUnauthorized.Error())
		return
	}
	var req struct {
		AppointmentID string `json:"appointmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if req.AppointmentID == "" {
		h.fail(w, ErrMissingDetails)
		return
	}
	if err := h.service.Cancel(r.Context(), principal.ID, principal.Role, req.AppointmentID); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "appointment cancelled")
}

// DoctorAppointments handles GET /api/doctor/appointments.
func (h *Handler) DoctorAppointments(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.Failure(w, ErrUnauthorized.Error())
		return
	}
	appointments, err := h.service.ListForDoctor(r.Context(), principal.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Data(w, "appointments", appointments)
}

// Complete handles POST /api/doctor/complete-appointment.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.Failure(w, ErrUnauthorized.Error())
		return
	}
	var req struct {
		AppointmentID string `json:"appointmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if req.AppointmentID == "" {
		h.fail(w, ErrMissingDetails)
		return
	}
	if err := h.service.Complete(r.Context(), principal.ID, req.AppointmentID); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "appointment completed")
}

// Dashboard handles GET /api/doctor/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.Failure(w, ErrUnauthorized.Error())
		return
	}
	dashboard, err := h.service.DoctorDashboard(r.Context(), principal.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Data(w, "dashData", dashboard)
}

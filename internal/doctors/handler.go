package doctors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/easyconsult/backend/internal/api/respond"
	"github.com/easyconsult/backend/internal/http/middleware"
	"github.com/easyconsult/backend/pkg/logging"
)

// Handler exposes the doctor-facing endpoints plus the public catalogue.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a doctors handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

var knownErrors = []error{
	ErrNotFound, ErrInvalidCredentials, ErrMissingDetails, ErrInvalidEmail,
	ErrWeakPassword, ErrEmailTaken,
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			respond.Failure(w, known.Error())
			return
		}
	}
	h.logger.Error("doctors: request failed", "error", err)
	respond.Failure(w, "something went wrong, please try again later")
}

// List handles GET /api/doctor/list (public).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Data(w, "doctors", profiles)
}

// Login handles POST /api/doctor/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Fields(w, map[string]any{"token": token})
}

// Profile handles GET /api/doctor/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.BadRequest(w, "missing auth context")
		return
	}
	doctor, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Data(w, "profileData", doctor)
}

// UpdateProfile handles POST /api/doctor/update-profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.BadRequest(w, "missing auth context")
		return
	}
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.service.UpdateProfile(r.Context(), principal.ID, &req); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "profile updated")
}

// ChangeAvailability handles POST /api/doctor/change-availability.
func (h *Handler) ChangeAvailability(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.BadRequest(w, "missing auth context")
		return
	}
	available, err := h.service.ToggleAvailability(r.Context(), principal.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Fields(w, map[string]any{"message": "availability changed", "available": available})
}

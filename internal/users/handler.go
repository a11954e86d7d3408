package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/easyconsult/backend/internal/api/respond"
	"github.com/easyconsult/backend/internal/http/middleware"
	"github.com/easyconsult/backend/internal/otp"
	"github.com/easyconsult/backend/pkg/logging"
)

const maxUploadBytes = 10 << 20

// Handler exposes the patient account endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a users handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// caller errors surface verbatim; everything else is generic.
var knownErrors = []error{
	ErrMissingDetails, ErrInvalidEmail, ErrWeakPassword, ErrEmailTaken,
	ErrNotFound, ErrInvalidCredentials,
	otp.ErrCodeNotFound, otp.ErrCodeExpired, otp.ErrCodeMismatch,
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			respond.Failure(w, known.Error())
			return
		}
	}
	h.logger.Error("users: request failed", "error", err)
	respond.Failure(w, "something went wrong, please try again later")
}

// Register handles POST /api/user/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	token, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Fields(w, map[string]any{"token": token})
}

// Login handles POST /api/user/login.
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

// ForgotPassword handles POST /api/user/forgot-password.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "OTP sent successfully")
}

// VerifyOTP handles POST /api/user/verify-otp.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" || req.OTP == "" {
		respond.Failure(w, "email and OTP are required")
		return
	}
	if err := h.service.VerifyResetCode(r.Context(), req.Email, req.OTP); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "OTP verified successfully")
}

// ResetPassword handles POST /api/user/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "password reset successful")
}

// GetProfile handles GET /api/user/get-profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.BadRequest(w, "missing auth context")
		return
	}
	user, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Data(w, "userData", user)
}

// UpdateProfile handles POST /api/user/update-profile. The body is
// multipart/form-data with the profile fields flattened and an optional
// "image" file part.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		respond.BadRequest(w, "missing auth context")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.BadRequest(w, "invalid form body")
		return
	}

	req := UpdateProfileRequest{
		Name:   r.FormValue("name"),
		Phone:  r.FormValue("phone"),
		DOB:    r.FormValue("dob"),
		Gender: r.FormValue("gender"),
		Address: Address{
			Line1: r.FormValue("line1"),
			Line2: r.FormValue("line2"),
		},
	}

	var image *ProfileImage
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		image = &ProfileImage{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	}

	if err := h.service.UpdateProfile(r.Context(), principal.ID, &req, image); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "profile updated")
}

// Package admin exposes the back-office endpoints: the credential-configured
// admin login, doctor roster management and the whole-practice views.
package admin

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/easyconsult/backend/internal/api/respond"
	"github.com/easyconsult/backend/internal/appointments"
	"github.com/easyconsult/backend/internal/auth"
	"github.com/easyconsult/backend/internal/doctors"
	"github.com/easyconsult/backend/internal/http/middleware"
	"github.com/easyconsult/backend/internal/users"
	"github.com/easyconsult/backend/pkg/logging"
)

const maxUploadBytes = 10 << 20

// ErrInvalidCredentials is returned for a wrong admin email or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type tokenIssuer interface {
	Issue(subject string, role auth.Role) (string, error)
}

// Handler serves the admin panel. The admin is a single account configured
// through the environment, not a stored user.
type Handler struct {
	email        string
	password     string
	tokens       tokenIssuer
	doctors      *doctors.Service
	users        *users.Service
	appointments *appointments.Service
	logger       *logging.Logger
}

// NewHandler creates an admin handler.
func NewHandler(email, password string, tokens tokenIssuer, doctorSvc *doctors.Service, userSvc *users.Service, appointmentSvc *appointments.Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		email:        email,
		password:     password,
		tokens:       tokens,
		doctors:      doctorSvc,
		users:        userSvc,
		appointments: appointmentSvc,
		logger:       logger,
	}
}

var knownErrors = []error{
	ErrInvalidCredentials,
	doctors.ErrNotFound, doctors.ErrEmailTaken, doctors.ErrMissingDetails,
	doctors.ErrInvalidEmail, doctors.ErrWeakPassword,
	appointments.ErrNotFound, appointments.ErrAlreadyCompleted,
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			respond.Failure(w, known.Error())
			return
		}
	}
	h.logger.Error("admin: request failed", "error", err)
	respond.Failure(w, "something went wrong, please try again later")
}

// Login handles POST /api/admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(h.email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if h.email == "" || !emailOK || !passwordOK {
		h.fail(w, ErrInvalidCredentials)
		return
	}
	token, err := h.tokens.Issue("admin", auth.RoleAdmin)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Fields(w, map[string]any{"token": token})
}

// AddDoctor handles POST /api/admin/add-doctor. The body is
// multipart/form-data with the doctor fields flattened and an "image" file
// part.
func (h *Handler) AddDoctor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.BadRequest(w, "invalid form body")
		return
	}

	fees, _ := strconv.ParseInt(r.FormValue("fees"), 10, 64)
	req := doctors.AddRequest{
		Name:       r.FormValue("name"),
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		Speciality: r.FormValue("speciality"),
		Degree:     r.FormValue("degree"),
		Experience: r.FormValue("experience"),
		About:      r.FormValue("about"),
		Fees:       fees,
		Address: doctors.Address{
			Line1: r.FormValue("line1"),
			Line2: r.FormValue("line2"),
		},
	}

	var image *doctors.ProfileImage
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		image = &doctors.ProfileImage{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	}

	if _, err := h.doctors.Add(r.Context(), &req, image); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "doctor added")
}

// AllDoctors handles GET /api/admin/all-doctors.
func (h *Handler) AllDoctors(w http.ResponseWriter, r *http.Request) {
	list, err := h.doctors.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Data(w, "doctors", list)
}

// DeleteDoctor handles DELETE /api/admin/doctor/{id}. Removing a doctor also
// drops their slot ledger.
func (h *Handler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respond.BadRequest(w, "missing doctor id")
		return
	}
	if err := h.doctors.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "doctor deleted")
}

// ChangeAvailability handles POST /api/admin/change-availability.
func (h *Handler) ChangeAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocID string `json:"docId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	available, err := h.doctors.ToggleAvailability(r.Context(), req.DocID)
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Fields(w, map[string]any{"available": available})
}

// Appointments handles GET /api/admin/appointments.
func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.appointments.ListAll(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	respond.Data(w, "appointments", list)
}

// CancelAppointment handles POST /api/admin/cancel-appointment.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())
	var req struct {
		AppointmentID string `json:"appointmentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.appointments.Cancel(r.Context(), principal.ID, auth.RoleAdmin, req.AppointmentID); err != nil {
		h.fail(w, err)
		return
	}
	respond.Success(w, "appointment cancelled")
}

// Dashboard is the admin-panel summary.
type Dashboard struct {
	Doctors            int                         `json:"doctors"`
	Appointments       int                         `json:"appointments"`
	Patients           int                         `json:"patients"`
	LatestAppointments []*appointments.Appointment `json:"latestAppointments"`
}

// GetDashboard handles GET /api/admin/dashboard.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	doctorCount, err := h.doctors.Count(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	patientCount, err := h.users.Count(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	all, err := h.appointments.ListAll(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	dashboard := Dashboard{
		Doctors:            doctorCount,
		Appointments:       len(all),
		Patients:           patientCount,
		LatestAppointments: all,
	}
	if len(dashboard.LatestAppointments) > 5 {
		dashboard.LatestAppointments = dashboard.LatestAppointments[:5]
	}
	respond.Data(w, "dashData", dashboard)
}

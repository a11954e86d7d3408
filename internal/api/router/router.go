// Package router assembles the chi route tree for the three panels: patient,
// doctor and admin.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/easyconsult/backend/internal/admin"
	"github.com/easyconsult/backend/internal/appointments"
	"github.com/easyconsult/backend/internal/auth"
	"github.com/easyconsult/backend/internal/doctors"
	httpmiddleware "github.com/easyconsult/backend/internal/http/middleware"
	"github.com/easyconsult/backend/internal/payments"
	"github.com/easyconsult/backend/internal/users"
	"github.com/easyconsult/backend/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	Verifier            httpmiddleware.Verifier
	UsersHandler        *users.Handler
	DoctorsHandler      *doctors.Handler
	AppointmentsHandler *appointments.Handler
	PaymentsHandler     *payments.Handler
	AdminHandler        *admin.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", cfg.UsersHandler.Register)
		r.Post("/login", cfg.UsersHandler.Login)
		r.Post("/forgot-password", cfg.UsersHandler.ForgotPassword)
		r.Post("/verify-otp", cfg.UsersHandler.VerifyOTP)
		r.Post("/reset-password", cfg.UsersHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.RequireRole(cfg.Verifier, auth.RoleUser))
			r.Get("/get-profile", cfg.UsersHandler.GetProfile)
			r.Post("/update-profile", cfg.UsersHandler.UpdateProfile)
			r.Post("/book-appointment", cfg.AppointmentsHandler.Book)
			r.Get("/appointments", cfg.AppointmentsHandler.ListMine)
			r.Post("/cancel-appointment", cfg.AppointmentsHandler.Cancel)
			if cfg.PaymentsHandler != nil {
				r.Post("/payment-razorpay", cfg.PaymentsHandler.CreateOrder)
				r.Post("/verify-razorpay", cfg.PaymentsHandler.Verify)
			}
		})
	})

	r.Route("/api/doctor", func(r chi.Router) {
		r.Get("/list", cfg.DoctorsHandler.List)
		r.Post("/login", cfg.DoctorsHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.RequireRole(cfg.Verifier, auth.RoleDoctor))
			r.Get("/profile", cfg.DoctorsHandler.Profile)
			r.Post("/update-profile", cfg.DoctorsHandler.UpdateProfile)
			r.Post("/change-availability", cfg.DoctorsHandler.ChangeAvailability)
			r.Get("/appointments", cfg.AppointmentsHandler.DoctorAppointments)
			r.Post("/cancel-appointment", cfg.AppointmentsHandler.Cancel)
			r.Post("/complete-appointment", cfg.AppointmentsHandler.Complete)
			r.Get("/dashboard", cfg.AppointmentsHandler.Dashboard)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", cfg.AdminHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.RequireRole(cfg.Verifier, auth.RoleAdmin))
			r.Post("/add-doctor", cfg.AdminHandler.AddDoctor)
			r.Get("/all-doctors", cfg.AdminHandler.AllDoctors)
			r.Delete("/doctor/{id}", cfg.AdminHandler.DeleteDoctor)
			r.Post("/change-availability", cfg.AdminHandler.ChangeAvailability)
			r.Get("/appointments", cfg.AdminHandler.Appointments)
			r.Post("/cancel-appointment", cfg.AdminHandler.CancelAppointment)
			r.Get("/dashboard", cfg.AdminHandler.GetDashboard)
		})
	})

	return r
}

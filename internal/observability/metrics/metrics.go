package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the appointment workflows.
type BookingMetrics struct {
	bookedTotal    *prometheus.CounterVec
	cancelledTotal *prometheus.CounterVec
	completedTotal prometheus.Counter
	emailsTotal    *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easyconsult",
			Subsystem: "appointments",
			Name:      "booked_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		cancelledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easyconsult",
			Subsystem: "appointments",
			Name:      "cancelled_total",
			Help:      "Cancellations by actor",
		}, []string{"actor"}),
		completedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "easyconsult",
			Subsystem: "appointments",
			Name:      "completed_total",
			Help:      "Appointments marked fulfilled",
		}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easyconsult",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Transactional emails by template and status",
		}, []string{"template", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookedTotal, m.cancelledTotal, m.completedTotal, m.emailsTotal)
	return m
}

// ObserveBooking records a booking attempt outcome such as "confirmed",
// "slot_taken" or "doctor_unavailable".
func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookedTotal.WithLabelValues(outcome).Inc()
}

// ObserveCancellation records who cancelled: "user", "doctor" or "admin".
func (m *BookingMetrics) ObserveCancellation(actor string) {
	if m == nil {
		return
	}
	m.cancelledTotal.WithLabelValues(actor).Inc()
}

// ObserveCompletion records a fulfilled appointment.
func (m *BookingMetrics) ObserveCompletion() {
	if m == nil {
		return
	}
	m.completedTotal.Inc()
}

// ObserveEmail records a send attempt for a mail template.
func (m *BookingMetrics) ObserveEmail(template, status string) {
	if m == nil {
		return
	}
	m.emailsTotal.WithLabelValues(template, status).Inc()
}

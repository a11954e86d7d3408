package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveBooking("confirmed")
	m.ObserveBooking("slot_taken")
	m.ObserveCancellation("user")
	m.ObserveCompletion()
	m.ObserveEmail("appointment_booked", "sent")
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("confirmed")
	m.ObserveCancellation("admin")
	m.ObserveCompletion()
	m.ObserveEmail("welcome", "failed")
}

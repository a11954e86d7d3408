package notify

import (
	"context"

	"github.com/easyconsult/backend/internal/appointments"
	"github.com/easyconsult/backend/internal/users"
	"github.com/easyconsult/backend/pkg/logging"
)

// Dispatcher turns account and booking events into queued mail jobs. All
// methods are fire-and-forget: a full queue is logged, never surfaced to the
// caller, because mail must not fail the workflow that triggered it.
type Dispatcher struct {
	queue  Queue
	logger *logging.Logger
}

// NewDispatcher creates a dispatcher publishing to the given queue.
func NewDispatcher(queue Queue, logger *logging.Logger) *Dispatcher {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{queue: queue, logger: logger.Component("notify")}
}

func (d *Dispatcher) enqueue(ctx context.Context, template string, msg EmailMessage) {
	if msg.To == "" {
		return
	}
	if err := d.queue.Enqueue(ctx, Job{Template: template, Message: msg}); err != nil {
		d.logger.Error("failed to enqueue mail", "template", template, "to", msg.To, "error", err)
	}
}

// Welcome queues the account-created mail.
func (d *Dispatcher) Welcome(ctx context.Context, name, email string) {
	d.enqueue(ctx, TemplateWelcome, welcomeEmail(name, email))
}

// LoginAlert queues the successful-login notice.
func (d *Dispatcher) LoginAlert(ctx context.Context, name, email string) {
	d.enqueue(ctx, TemplateLoginAlert, loginAlertEmail(name, email))
}

// PasswordResetCode queues the OTP mail.
func (d *Dispatcher) PasswordResetCode(ctx context.Context, name, email, code string) {
	d.enqueue(ctx, TemplateResetCode, resetCodeEmail(name, email, code))
}

// PasswordResetConfirmed queues the reset-done notice.
func (d *Dispatcher) PasswordResetConfirmed(ctx context.Context, name, email string) {
	d.enqueue(ctx, TemplateResetConfirmed, resetConfirmedEmail(name, email))
}

// AppointmentBooked queues the booking confirmation.
func (d *Dispatcher) AppointmentBooked(ctx context.Context, a *appointments.Appointment) {
	d.enqueue(ctx, TemplateBooked,
		bookedEmail(a.UserData.Name, a.UserData.Email, a.DocData.Name, a.SlotDate, a.SlotTime))
}

// AppointmentCancelledByUser queues the patient-initiated cancellation notice.
func (d *Dispatcher) AppointmentCancelledByUser(ctx context.Context, a *appointments.Appointment) {
	d.enqueue(ctx, TemplateCancelledByUser,
		cancelledByUserEmail(a.UserData.Name, a.UserData.Email, a.DocData.Name))
}

// AppointmentCancelledByDoctor queues the practice-initiated cancellation
// notice.
func (d *Dispatcher) AppointmentCancelledByDoctor(ctx context.Context, a *appointments.Appointment) {
	d.enqueue(ctx, TemplateCancelledByDoctor,
		cancelledByDoctorEmail(a.UserData.Name, a.UserData.Email, a.DocData.Name, a.SlotDate, a.SlotTime))
}

// AppointmentCompleted queues the visit-completed notice.
func (d *Dispatcher) AppointmentCompleted(ctx context.Context, a *appointments.Appointment) {
	d.enqueue(ctx, TemplateCompleted,
		completedEmail(a.UserData.Name, a.UserData.Email, a.DocData.Name, a.SlotDate, a.SlotTime))
}

var (
	_ appointments.Notifier = (*Dispatcher)(nil)
	_ users.Notifier        = (*Dispatcher)(nil)
)

package appointments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyconsult/backend/internal/auth"
	"github.com/easyconsult/backend/internal/doctors"
	"github.com/easyconsult/backend/internal/users"
)

type fixture struct {
	service *Service
	repo    *InMemoryRepository
	doctors *doctors.InMemoryRepository
	users   *users.InMemoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    NewInMemoryRepository(),
		doctors: doctors.NewInMemoryRepository(),
		users:   users.NewInMemoryRepository(),
	}
	f.service = NewService(f.repo, f.doctors, f.users, nil, nil, nil)

	require.NoError(t, f.users.Create(context.Background(), &users.User{
		ID:    "user-1",
		Name:  "Asha Rao",
		Email: "asha@example.com",
	}))
	require.NoError(t, f.users.Create(context.Background(), &users.User{
		ID:    "user-2",
		Name:  "Vikram Shetty",
		Email: "vikram@example.com",
	}))
	require.NoError(t, f.doctors.Create(context.Background(), &doctors.Doctor{
		ID:         "doc-1",
		Name:       "Dr. Mehta",
		Email:      "mehta@example.com",
		Speciality: "Dermatologist",
		Fees:       500,
		Available:  true,
	}))
	return f
}

func (f *fixture) book(t *testing.T, userID, date, timeLabel string) *Appointment {
	t.Helper()
	appointment, err := f.service.Book(context.Background(), userID, &BookRequest{
		DocID:    "doc-1",
		SlotDate: date,
		SlotTime: timeLabel,
	})
	require.NoError(t, err)
	return appointment
}

func (f *fixture) ledger(t *testing.T) doctors.Ledger {
	t.Helper()
	ledger, err := f.doctors.Ledger(context.Background(), "doc-1")
	require.NoError(t, err)
	return ledger
}

func TestBookRecordsAppointmentAndReservesSlot(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")

	assert.Equal(t, "user-1", appointment.UserID)
	assert.Equal(t, "doc-1", appointment.DocID)
	assert.Equal(t, int64(500), appointment.Amount)
	assert.Equal(t, "Dr. Mehta", appointment.DocData.Name)
	assert.Equal(t, "Asha Rao", appointment.UserData.Name)
	assert.False(t, appointment.Cancelled)
	assert.False(t, appointment.IsCompleted)
	assert.False(t, appointment.Payment)

	assert.Equal(t, []string{"10:00 AM"}, f.ledger(t)["5_3_2025"])

	stored, err := f.repo.GetByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.ID, stored.ID)
}

func TestBookSameSlotTwiceFails(t *testing.T) {
	f := newFixture(t)

	f.book(t, "user-1", "5_3_2025", "10:00 AM")

	_, err := f.service.Book(context.Background(), "user-2", &BookRequest{
		DocID:    "doc-1",
		SlotDate: "5_3_2025",
		SlotTime: "10:00 AM",
	})
	assert.ErrorIs(t, err, doctors.ErrSlotTaken)

	all, err := f.repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBookDifferentTimesSameDay(t *testing.T) {
	f := newFixture(t)

	f.book(t, "user-1", "5_3_2025", "10:00 AM")
	f.book(t, "user-2", "5_3_2025", "10:30 AM")

	assert.ElementsMatch(t, []string{"10:00 AM", "10:30 AM"}, f.ledger(t)["5_3_2025"])
}

func TestBookUnavailableDoctorBooksNothing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.doctors.SetAvailability(context.Background(), "doc-1", false))

	_, err := f.service.Book(context.Background(), "user-1", &BookRequest{
		DocID:    "doc-1",
		SlotDate: "5_3_2025",
		SlotTime: "10:00 AM",
	})
	assert.ErrorIs(t, err, ErrDoctorUnavailable)

	assert.Empty(t, f.ledger(t))
	all, err := f.repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBookUnknownDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), "user-1", &BookRequest{
		DocID:    "doc-missing",
		SlotDate: "5_3_2025",
		SlotTime: "10:00 AM",
	})
	assert.ErrorIs(t, err, doctors.ErrNotFound)
}

func TestBookValidatesInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Book(context.Background(), "user-1", &BookRequest{DocID: "doc-1"})
	assert.ErrorIs(t, err, ErrMissingDetails)

	_, err = f.service.Book(context.Background(), "user-1", &BookRequest{
		DocID:    "doc-1",
		SlotDate: "05_3_2025",
		SlotTime: "10:00 AM",
	})
	assert.ErrorIs(t, err, doctors.ErrBadDateKey)
}

func TestCancelReleasesSlotForRebooking(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")

	err := f.service.Cancel(context.Background(), "user-1", auth.RoleUser, appointment.ID)
	require.NoError(t, err)

	stored, err := f.repo.GetByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cancelled)

	// Slot is free again, so another patient can take it.
	rebooked := f.book(t, "user-2", "5_3_2025", "10:00 AM")
	assert.NotEqual(t, appointment.ID, rebooked.ID)
	assert.Equal(t, []string{"10:00 AM"}, f.ledger(t)["5_3_2025"])
}

func TestCancelByWrongUserLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")

	err := f.service.Cancel(context.Background(), "user-2", auth.RoleUser, appointment.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	stored, err := f.repo.GetByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.False(t, stored.Cancelled)
	assert.Equal(t, []string{"10:00 AM"}, f.ledger(t)["5_3_2025"])
}

func TestCancelByWrongDoctorRejected(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")

	err := f.service.Cancel(context.Background(), "doc-2", auth.RoleDoctor, appointment.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCancelByOwningDoctorAndAdmin(t *testing.T) {
	f := newFixture(t)

	first := f.book(t, "user-1", "5_3_2025", "10:00 AM")
	second := f.book(t, "user-1", "5_3_2025", "11:00 AM")

	require.NoError(t, f.service.Cancel(context.Background(), "doc-1", auth.RoleDoctor, first.ID))
	require.NoError(t, f.service.Cancel(context.Background(), "admin", auth.RoleAdmin, second.ID))

	assert.Empty(t, f.ledger(t))
}

func TestCancelTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")

	require.NoError(t, f.service.Cancel(context.Background(), "user-1", auth.RoleUser, appointment.ID))
	require.NoError(t, f.service.Cancel(context.Background(), "user-1", auth.RoleUser, appointment.ID))
}

func TestCancelCompletedAppointmentRejected(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")
	require.NoError(t, f.service.Complete(context.Background(), "doc-1", appointment.ID))

	err := f.service.Cancel(context.Background(), "user-1", auth.RoleUser, appointment.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestCancelUnknownAppointment(t *testing.T) {
	f := newFixture(t)

	err := f.service.Cancel(context.Background(), "user-1", auth.RoleUser, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteNeverTouchesLedger(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")

	require.NoError(t, f.service.Complete(context.Background(), "doc-1", appointment.ID))

	stored, err := f.repo.GetByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	assert.Equal(t, []string{"10:00 AM"}, f.ledger(t)["5_3_2025"])
}

func TestCompleteTwiceIsIdempotent(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")

	require.NoError(t, f.service.Complete(context.Background(), "doc-1", appointment.ID))
	require.NoError(t, f.service.Complete(context.Background(), "doc-1", appointment.ID))
}

func TestCompleteCancelledAppointmentRejected(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")
	require.NoError(t, f.service.Cancel(context.Background(), "user-1", auth.RoleUser, appointment.ID))

	err := f.service.Complete(context.Background(), "doc-1", appointment.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCompleteByWrongDoctorRejected(t *testing.T) {
	f := newFixture(t)

	appointment := f.book(t, "user-1", "5_3_2025", "10:00 AM")

	err := f.service.Complete(context.Background(), "doc-2", appointment.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	stored, err := f.repo.GetByID(context.Background(), appointment.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)
}

func TestListingsScopeByParty(t *testing.T) {
	f := newFixture(t)

	f.book(t, "user-1", "5_3_2025", "10:00 AM")
	f.book(t, "user-2", "5_3_2025", "11:00 AM")

	mine, err := f.service.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "user-1", mine[0].UserID)

	docList, err := f.service.ListForDoctor(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Len(t, docList, 2)

	all, err := f.service.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDoctorDashboard(t *testing.T) {
	f := newFixture(t)

	first := f.book(t, "user-1", "5_3_2025", "10:00 AM")
	second := f.book(t, "user-1", "5_3_2025", "11:00 AM")
	f.book(t, "user-2", "6_3_2025", "10:00 AM")

	require.NoError(t, f.service.Complete(context.Background(), "doc-1", first.ID))
	require.NoError(t, f.repo.MarkPaid(context.Background(), second.ID))

	dashboard, err := f.service.DoctorDashboard(context.Background(), "doc-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), dashboard.Earnings)
	assert.Equal(t, 3, dashboard.Appointments)
	assert.Equal(t, 2, dashboard.Patients)
	assert.Len(t, dashboard.LatestAppointments, 3)
}

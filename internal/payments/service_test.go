package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyconsult/backend/internal/appointments"
)

type fakeGateway struct {
	orders     map[string]*Order
	lastAmount int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: make(map[string]*Order)}
}

func (g *fakeGateway) CreateOrder(amountMinor int64, receipt string) (*Order, error) {
	g.lastAmount = amountMinor
	order := &Order{
		ID:       "order_" + receipt,
		Amount:   amountMinor,
		Currency: "INR",
		Receipt:  receipt,
		Status:   "created",
	}
	g.orders[order.ID] = order
	return order, nil
}

func (g *fakeGateway) FetchOrder(orderID string) (*Order, error) {
	order, ok := g.orders[orderID]
	if !ok {
		return nil, ErrAppointmentUnavailable
	}
	return order, nil
}

func seedAppointment(t *testing.T, repo *appointments.InMemoryRepository, id string, cancelled bool) {
	t.Helper()
	appointment := &appointments.Appointment{
		ID:        id,
		UserID:    "user-1",
		DocID:     "doc-1",
		Amount:    500,
		BookedAt:  time.Now().UTC(),
		Cancelled: cancelled,
	}
	require.NoError(t, repo.Create(context.Background(), appointment))
}

func TestCreateOrderConvertsFeeToPaise(t *testing.T) {
	repo := appointments.NewInMemoryRepository()
	gateway := newFakeGateway()
	service := NewService(repo, gateway, nil)
	seedAppointment(t, repo, "apt-1", false)

	order, err := service.CreateOrder(context.Background(), "user-1", "apt-1")
	require.NoError(t, err)

	assert.Equal(t, int64(50000), order.Amount)
	assert.Equal(t, "apt-1", order.Receipt)
	assert.Equal(t, "INR", order.Currency)
}

func TestCreateOrderRejectsCancelledAppointment(t *testing.T) {
	repo := appointments.NewInMemoryRepository()
	service := NewService(repo, newFakeGateway(), nil)
	seedAppointment(t, repo, "apt-1", true)

	_, err := service.CreateOrder(context.Background(), "user-1", "apt-1")
	assert.ErrorIs(t, err, ErrAppointmentUnavailable)
}

func TestCreateOrderRejectsUnknownAppointment(t *testing.T) {
	repo := appointments.NewInMemoryRepository()
	service := NewService(repo, newFakeGateway(), nil)

	_, err := service.CreateOrder(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrAppointmentUnavailable)
}

func TestCreateOrderRejectsOtherUsersAppointment(t *testing.T) {
	repo := appointments.NewInMemoryRepository()
	service := NewService(repo, newFakeGateway(), nil)
	seedAppointment(t, repo, "apt-1", false)

	_, err := service.CreateOrder(context.Background(), "user-2", "apt-1")
	assert.ErrorIs(t, err, appointments.ErrUnauthorized)
}

func TestVerifyMarksAppointmentPaid(t *testing.T) {
	repo := appointments.NewInMemoryRepository()
	gateway := newFakeGateway()
	service := NewService(repo, gateway, nil)
	seedAppointment(t, repo, "apt-1", false)

	order, err := service.CreateOrder(context.Background(), "user-1", "apt-1")
	require.NoError(t, err)

	gateway.orders[order.ID].Status = "paid"
	require.NoError(t, service.Verify(context.Background(), order.ID))

	stored, err := repo.GetByID(context.Background(), "apt-1")
	require.NoError(t, err)
	assert.True(t, stored.Payment)

	// Re-verifying a paid order stays successful.
	require.NoError(t, service.Verify(context.Background(), order.ID))
}

func TestVerifyUnpaidOrderFails(t *testing.T) {
	repo := appointments.NewInMemoryRepository()
	gateway := newFakeGateway()
	service := NewService(repo, gateway, nil)
	seedAppointment(t, repo, "apt-1", false)

	order, err := service.CreateOrder(context.Background(), "user-1", "apt-1")
	require.NoError(t, err)

	err = service.Verify(context.Background(), order.ID)
	assert.ErrorIs(t, err, ErrPaymentNotCaptured)

	stored, err := repo.GetByID(context.Background(), "apt-1")
	require.NoError(t, err)
	assert.False(t, stored.Payment)
}

func TestServiceWithoutGateway(t *testing.T) {
	repo := appointments.NewInMemoryRepository()
	service := NewService(repo, nil, nil)

	_, err := service.CreateOrder(context.Background(), "user-1", "apt-1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.ErrorIs(t, service.Verify(context.Background(), "order"), ErrGatewayUnavailable)
}

package payments

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order is a gateway payment order tied to an appointment via the receipt.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway abstracts the payment provider so the service can be tested with a
// fake. Amounts are in the currency's minor unit.
type Gateway interface {
	CreateOrder(amountMinor int64, receipt string) (*Order, error)
	FetchOrder(orderID string) (*Order, error)
}

// RazorpayGateway implements Gateway against the Razorpay Orders API.
type RazorpayGateway struct {
	client   *razorpay.Client
	currency string
}

// NewRazorpayGateway creates a gateway with the given API credentials.
// Returns nil when the key id is absent so callers can fall back to a stub.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	if keyID == "" {
		return nil
	}
	return &RazorpayGateway{
		client:   razorpay.NewClient(keyID, keySecret),
		currency: "INR",
	}
}

// CreateOrder creates a Razorpay order for the given amount.
func (g *RazorpayGateway) CreateOrder(amountMinor int64, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": g.currency,
		"receipt":  receipt,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("payments: create razorpay order: %w", err)
	}
	return orderFromBody(body), nil
}

// FetchOrder retrieves a Razorpay order by id.
func (g *RazorpayGateway) FetchOrder(orderID string) (*Order, error) {
	body, err := g.client.Order.Fetch(orderID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("payments: fetch razorpay order: %w", err)
	}
	return orderFromBody(body), nil
}

func orderFromBody(body map[string]interface{}) *Order {
	order := &Order{}
	if v, ok := body["id"].(string); ok {
		order.ID = v
	}
	// Razorpay returns JSON numbers, which decode as float64.
	switch v := body["amount"].(type) {
	case float64:
		order.Amount = int64(v)
	case int64:
		order.Amount = v
	case int:
		order.Amount = int64(v)
	}
	if v, ok := body["currency"].(string); ok {
		order.Currency = v
	}
	if v, ok := body["receipt"].(string); ok {
		order.Receipt = v
	}
	if v, ok := body["status"].(string); ok {
		order.Status = v
	}
	return order
}

var _ Gateway = (*RazorpayGateway)(nil)

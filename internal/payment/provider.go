package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order is the provider-side payment intent handed back to the browser to
// drive the provider's checkout UI. Amount stays in minor units here; only
// the persisted record converts to major units.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// OrderCreator opens an order with the payment provider using one specific
// recipient's credentials.
type OrderCreator interface {
	CreateOrder(ctx context.Context, keyID, keySecret string, amountMinor int64, currency string) (Order, error)
}

// RazorpayProvider creates orders through the official SDK. A client is
// built per call because every order is scoped to the recipient's own key
// pair, never a platform-wide one.
type RazorpayProvider struct {
	timeoutSeconds int64
}

func NewRazorpayProvider(timeoutSeconds int64) *RazorpayProvider {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}
	return &RazorpayProvider{timeoutSeconds: timeoutSeconds}
}

func (p *RazorpayProvider) CreateOrder(ctx context.Context, keyID, keySecret string, amountMinor int64, currency string) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}

	client := razorpay.NewClient(keyID, keySecret)
	client.SetTimeout(int16(p.timeoutSeconds))

	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
	}
	body, err := client.Order.Create(data, nil)
	if err != nil {
		return Order{}, err
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return Order{}, fmt.Errorf("provider response missing order id")
	}
	return Order{ID: id, Amount: amountMinor, Currency: currency}, nil
}

package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Intent is the gateway's handle for a payment attempt. ClientSecret goes to
// the shopper's client to confirm the charge; the outcome arrives later on the
// webhook.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// Gateway is the opaque payment-provider boundary.
type Gateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error)
}

// Client talks to a Stripe-style HTTP gateway.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(10 * time.Second).
		SetRetryCount(2)
	return &Client{http: c}
}

type createIntentRequest struct {
	Amount   string            `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (c *Client) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error) {
	var intent Intent
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createIntentRequest{
			Amount:   amount.StringFixed(2),
			Currency: currency,
			Metadata: metadata,
		}).
		SetResult(&intent).
		Post("/v1/payment_intents")
	if err != nil {
		return nil, fmt.Errorf("gateway create intent: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gateway create intent: status %d: %s", resp.StatusCode(), resp.String())
	}
	return &intent, nil
}

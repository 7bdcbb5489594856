// Package payment wraps the online payment provider: creating orders for
// the advance amount and verifying webhook signatures.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
)

// Client talks to the payment provider's order API. With no key configured
// it returns locally generated orders so the flow can be exercised in
// development.
type Client struct {
	KeyID     string
	KeySecret string
	Endpoint  string
	HTTP      *http.Client
}

func NewClient(keyID, keySecret string) *Client {
	endpoint := os.Getenv("PAYMENT_API_URL")
	if endpoint == "" {
		endpoint = "https://api.razorpay.com/v1/orders"
	}
	return &Client{KeyID: keyID, KeySecret: keySecret, Endpoint: endpoint, HTTP: http.DefaultClient}
}

// Order is the provider-side charge created for a booking's advance amount.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// MinorUnits converts a major-unit amount to the provider's minor currency
// unit (e.g. rupees to paise), rounding to the nearest unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder creates a provider order charging the given major-unit amount.
// Notes are attached as order metadata; the booking id travels there so the
// webhook can find its way back.
func (c *Client) CreateOrder(ctx context.Context, amount float64, receipt string, notes map[string]string) (Order, error) {
	if c.KeyID == "" || c.KeySecret == "" {
		// mock mode: mint a local order so development works offline
		return Order{ID: "order_mock_" + receipt, Amount: MinorUnits(amount), Currency: "INR", Receipt: receipt}, nil
	}
	payload, err := json.Marshal(map[string]any{
		"amount":   MinorUnits(amount),
		"currency": "INR",
		"receipt":  receipt,
		"notes":    notes,
	})
	if err != nil {
		return Order{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Order{}, err
	}
	req.SetBasicAuth(c.KeyID, c.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("payment api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Order{}, fmt.Errorf("payment api: %s", resp.Status)
	}
	var o Order
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// WebhookEvent is the subset of the provider callback the reconciliation
// path needs: the payment entity with its id and the notes metadata that
// carries the booking id.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string            `json:"id"`
				Amount int64             `json:"amount"`
				Notes  map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// VerifySignature checks the HMAC-SHA256 signature the provider computes
// over the raw webhook body. Comparison is constant time.
func VerifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ParseWebhook decodes a verified webhook body.
func ParseWebhook(body []byte) (WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("webhook decode: %w", err)
	}
	return ev, nil
}

package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// HTTPSMSSender delivers texts through a generic SMS gateway HTTP API.
// With no API key configured it logs the message instead.
type HTTPSMSSender struct {
	APIKey   string
	SenderID string
	Endpoint string
	Client   *http.Client
}

func NewHTTPSMSSender(apiKey, senderID string) *HTTPSMSSender {
	endpoint := os.Getenv("SMS_API_URL")
	if endpoint == "" {
		endpoint = "https://api.smsgateway.example/v1/send"
	}
	return &HTTPSMSSender{APIKey: apiKey, SenderID: senderID, Endpoint: endpoint, Client: http.DefaultClient}
}

// Send posts one message to the gateway. The caller controls the timeout
// through ctx.
func (s *HTTPSMSSender) Send(ctx context.Context, to, message string) error {
	if s.APIKey == "" {
		log.Printf("sms (mock) to=%s body=%q", to, message)
		return nil
	}
	form := url.Values{}
	form.Set("to", to)
	form.Set("from", s.SenderID)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway: %s", resp.Status)
	}
	return nil
}

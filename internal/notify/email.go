package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

const emailAPI = "https://api.resend.com/emails"

// HTTPEmailSender delivers mail through a transactional email HTTP API.
// With no API key configured it logs the message instead, so local
// development works without credentials.
type HTTPEmailSender struct {
	APIKey string
	From   string
	Client *http.Client
}

func NewHTTPEmailSender(apiKey, from string) *HTTPEmailSender {
	return &HTTPEmailSender{APIKey: apiKey, From: from, Client: http.DefaultClient}
}

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send posts one message to the email API. The caller controls the timeout
// through ctx.
func (s *HTTPEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if s.APIKey == "" {
		log.Printf("email (mock) to=%s subject=%q", to, subject)
		return nil
	}
	payload, err := json.Marshal(emailPayload{From: s.From, To: to, Subject: subject, Text: body})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, emailAPI, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("email api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("email api: %s", resp.Status)
	}
	return nil
}

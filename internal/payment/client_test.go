package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	secret := "whsec_test"

	assert.True(t, VerifySignature(body, sign(body, secret), secret))
	assert.False(t, VerifySignature(body, sign(body, "other"), secret))
	assert.False(t, VerifySignature([]byte("tampered"), sign(body, secret), secret))
	assert.False(t, VerifySignature(body, "", secret))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(100), MinorUnits(1))
	assert.Equal(t, int64(12345), MinorUnits(123.45))
	// Float representation of 19.99 must still round to 1999, not truncate.
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(0), MinorUnits(0))
}

func TestCreateOrder_MockWithoutKeys(t *testing.T) {
	c := NewClient("", "")

	o, err := c.CreateOrder(context.Background(), 250.00, "rcpt-1", map[string]string{"booking_id": "5"})
	require.NoError(t, err)
	assert.Equal(t, "order_mock_rcpt-1", o.ID)
	assert.Equal(t, int64(25000), o.Amount)
}

func TestCreateOrder_PostsToProvider(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"id": "order_live_1", "amount": got["amount"], "currency": "INR", "receipt": got["receipt"],
		})
	}))
	defer srv.Close()

	c := NewClient("key_id", "key_secret")
	c.Endpoint = srv.URL

	o, err := c.CreateOrder(context.Background(), 19.99, "rcpt-2", map[string]string{"booking_id": "8"})
	require.NoError(t, err)
	assert.Equal(t, "order_live_1", o.ID)
	assert.Equal(t, int64(1999), o.Amount)
	assert.Equal(t, float64(1999), got["amount"])

	notes, ok := got["notes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "8", notes["booking_id"])
}

func TestParseWebhook(t *testing.T) {
	body := []byte(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_abc",
			"amount": 30000,
			"notes": {"booking_id": "42"}
		}}}
	}`)

	ev, err := ParseWebhook(body)
	require.NoError(t, err)
	assert.Equal(t, "payment.captured", ev.Event)
	assert.Equal(t, "pay_abc", ev.Payload.Payment.Entity.ID)
	assert.Equal(t, "42", ev.Payload.Payment.Entity.Notes["booking_id"])

	_, err = ParseWebhook([]byte("not json"))
	assert.Error(t, err)
}

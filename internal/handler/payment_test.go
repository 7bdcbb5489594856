package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/eventra-backend/internal/config"
	"github.com/eventra/eventra-backend/internal/model"
	"github.com/eventra/eventra-backend/internal/notify"
	"github.com/eventra/eventra-backend/internal/payment"
)

const webhookTestSecret = "whsec_test"

// paymentStack wires a payment handler over fakes: one pending booking
// (id 5) owned by user 7 with venue 3 and provider 9 attached.
func paymentStack(t *testing.T) (*PaymentHandler, *fakeBookings, *countingEmail) {
	t.Helper()
	venueID := uint64(3)
	bookings := &fakeBookings{bookings: map[uint64]*model.Booking{
		5: {
			ID:      5,
			UserID:  7,
			VenueID: &venueID,
			Services: []model.BookingService{
				{ProviderID: 9, ServiceType: model.ServiceCatering, Price: 800},
			},
			Event: model.EventDetails{
				Type:      "wedding",
				StartDate: time.Now().UTC().AddDate(0, 1, 0),
			},
			Payment: model.PaymentDetails{
				Total: 1000, Advance: 300, Remaining: 700,
				Method: model.PaymentMethodOnline,
			},
			Status: model.StatusPending,
		},
	}}
	users := &fakeUsers{byID: map[uint64]model.User{
		7: {ID: 7, Name: "Asha", Email: "asha@example.com", Phone: "+911"},
	}}
	hosts := &fakeHosts{byID: map[uint64]model.Host{
		3: {ID: 3, Name: "Grand Hall", Email: "hall@example.com", Phone: "+912",
			HostType: model.HostVenue, IsVerified: true, IsActive: true},
		9: {ID: 9, Name: "Spice Catering", Email: "spice@example.com", Phone: "+913",
			HostType: model.HostCaterer, IsVerified: true, IsActive: true},
	}}
	email := &countingEmail{}
	notifier := notify.NewNotifier(email, &countingSMS{}, nil)
	cfg := config.Config{WebhookSecret: webhookTestSecret}

	bh := NewBookingHandler(cfg, bookings, users, hosts, notifier)
	return NewPaymentHandler(cfg, bookings, payment.NewClient("", ""), bh), bookings, email
}

func TestConfirm_MarksPaidOnceAndFansOut(t *testing.T) {
	ph, bookings, email := paymentStack(t)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/payments/confirm",
		`{"bookingId":5,"transactionId":"tx1"}`)
	asActor(c, model.KindUser, 7)
	require.NoError(t, ph.Confirm(c))
	require.Equal(t, http.StatusOK, rec.Code)

	b := bookings.bookings[5]
	require.NotNil(t, b.Payment.TransactionID)
	assert.Equal(t, "tx1", *b.Payment.TransactionID)
	assert.True(t, b.Payment.IsPaid)
	assert.Equal(t, model.StatusConfirmed, b.Status)
	// paid fan-out reaches user, venue and provider
	assert.Equal(t, 3, email.sent)
	assert.Equal(t, 1, bookings.flagCalls)
}

func TestConfirm_SecondTransactionIsRejected(t *testing.T) {
	ph, bookings, email := paymentStack(t)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/payments/confirm",
		`{"bookingId":5,"transactionId":"tx1"}`)
	asActor(c, model.KindUser, 7)
	require.NoError(t, ph.Confirm(c))
	require.Equal(t, http.StatusOK, rec.Code)
	sentAfterFirst := email.sent

	c, rec = jsonCtx(t, http.MethodPost, "/v1/payments/confirm",
		`{"bookingId":5,"transactionId":"tx2"}`)
	asActor(c, model.KindUser, 7)
	require.NoError(t, ph.Confirm(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// exactly one transaction id recorded, exactly one paid fan-out
	b := bookings.bookings[5]
	require.NotNil(t, b.Payment.TransactionID)
	assert.Equal(t, "tx1", *b.Payment.TransactionID)
	assert.Equal(t, sentAfterFirst, email.sent)
	assert.Equal(t, 1, bookings.flagCalls)
}

func TestConfirm_OnlyOwnerMayConfirm(t *testing.T) {
	ph, bookings, _ := paymentStack(t)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/payments/confirm",
		`{"bookingId":5,"transactionId":"tx1"}`)
	asActor(c, model.KindUser, 8)
	require.NoError(t, ph.Confirm(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, bookings.bookings[5].Payment.IsPaid)
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func deliverWebhook(t *testing.T, ph *PaymentHandler, body, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", sig)
	rec := httptest.NewRecorder()
	require.NoError(t, ph.Webhook(echo.New().NewContext(req, rec)))
	return rec
}

func TestWebhook_ReplayIsNoOp(t *testing.T) {
	ph, bookings, email := paymentStack(t)
	body := `{"event":"payment.captured","payload":{"payment":{"entity":{` +
		`"id":"pay_1","amount":30000,"notes":{"booking_id":"5"}}}}}`
	sig := signWebhook([]byte(body))

	rec := deliverWebhook(t, ph, body, sig)
	require.Equal(t, http.StatusOK, rec.Code)

	b := bookings.bookings[5]
	require.NotNil(t, b.Payment.TransactionID)
	assert.Equal(t, "pay_1", *b.Payment.TransactionID)
	assert.Equal(t, model.StatusConfirmed, b.Status)
	sentAfterFirst := email.sent
	flagsAfterFirst := bookings.flagCalls

	// duplicate delivery is acknowledged without a second fan-out
	rec = deliverWebhook(t, ph, body, sig)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pay_1", *bookings.bookings[5].Payment.TransactionID)
	assert.Equal(t, sentAfterFirst, email.sent)
	assert.Equal(t, flagsAfterFirst, bookings.flagCalls)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	ph, bookings, _ := paymentStack(t)
	body := `{"event":"payment.captured","payload":{"payment":{"entity":{` +
		`"id":"pay_1","amount":30000,"notes":{"booking_id":"5"}}}}}`

	rec := deliverWebhook(t, ph, body, signWebhook([]byte("other body")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, bookings.bookings[5].Payment.IsPaid)
}

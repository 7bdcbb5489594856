package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/eventra-backend/internal/model"
)

type fakeEmail struct {
	sent []string // recipient addresses in delivery order
	fail bool
}

func (f *fakeEmail) Send(_ context.Context, to, _, _ string) error {
	if f.fail {
		return errors.New("gateway down")
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeSMS struct {
	sent []string
	fail bool
}

func (f *fakeSMS) Send(_ context.Context, to, _ string) error {
	if f.fail {
		return errors.New("gateway down")
	}
	f.sent = append(f.sent, to)
	return nil
}

func testBooking(status model.Status) model.Booking {
	venue := uint64(3)
	txn := "pay_123"
	return model.Booking{
		ID:      42,
		UserID:  7,
		VenueID: &venue,
		Services: []model.BookingService{
			{ProviderID: 9, ServiceType: model.ServiceCatering, Price: 800},
		},
		Event: model.EventDetails{
			Type:      "wedding",
			StartDate: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
		},
		Payment: model.PaymentDetails{Advance: 300, TransactionID: &txn},
		Status:  status,
	}
}

func testParties() Parties {
	return Parties{
		User:  Contact{Name: "Asha", Email: "asha@example.com", Phone: "+911"},
		Venue: &Contact{Name: "Grand Hall", Email: "hall@example.com", Phone: "+912"},
		Providers: []Contact{
			{Name: "Spice Catering", Email: "spice@example.com", Phone: "+913"},
		},
	}
}

func TestNotifyParties_CreatedReachesEveryone(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := NewNotifier(email, sms, nil)

	flags := n.NotifyParties(context.Background(), testParties(), testBooking(model.StatusPending), EventCreated)

	assert.Equal(t, []string{"asha@example.com", "hall@example.com", "spice@example.com"}, email.sent)
	assert.Equal(t, []string{"+911", "+912", "+913"}, sms.sent)
	assert.True(t, flags.EmailSent)
	assert.True(t, flags.SMSSent)
}

func TestNotifyParties_ConfirmedReachesUserOnly(t *testing.T) {
	email := &fakeEmail{}
	n := NewNotifier(email, &fakeSMS{}, nil)

	n.NotifyParties(context.Background(), testParties(), testBooking(model.StatusConfirmed), EventStatusChanged)

	assert.Equal(t, []string{"asha@example.com"}, email.sent)
}

func TestNotifyParties_CancelledReachesHosts(t *testing.T) {
	email := &fakeEmail{}
	n := NewNotifier(email, &fakeSMS{}, nil)

	n.NotifyParties(context.Background(), testParties(), testBooking(model.StatusCancelled), EventStatusChanged)

	assert.Equal(t, []string{"asha@example.com", "hall@example.com", "spice@example.com"}, email.sent)
}

func TestNotifyParties_PaidReachesHosts(t *testing.T) {
	email := &fakeEmail{}
	n := NewNotifier(email, &fakeSMS{}, nil)

	n.NotifyParties(context.Background(), testParties(), testBooking(model.StatusConfirmed), EventPaid)

	assert.Len(t, email.sent, 3)
}

func TestNotifyParties_FailuresDoNotAbort(t *testing.T) {
	sms := &fakeSMS{}
	n := NewNotifier(&fakeEmail{fail: true}, sms, nil)

	flags := n.NotifyParties(context.Background(), testParties(), testBooking(model.StatusPending), EventCreated)

	// Email failed for every recipient; SMS still went through.
	assert.False(t, flags.EmailSent)
	assert.True(t, flags.SMSSent)
	assert.Len(t, sms.sent, 3)
}

func TestNotifyParties_SkipsMissingChannels(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := NewNotifier(email, sms, nil)

	p := testParties()
	p.User.Email = ""
	p.Venue = nil
	p.Providers = nil

	flags := n.NotifyParties(context.Background(), p, testBooking(model.StatusPending), EventCreated)

	assert.Empty(t, email.sent)
	assert.Equal(t, []string{"+911"}, sms.sent)
	assert.False(t, flags.EmailSent)
	assert.True(t, flags.SMSSent)
}

func TestNotifyParties_PublishesAuditEvent(t *testing.T) {
	var gotID uint64
	var gotEvent, gotStatus string
	publish := func(_ context.Context, id uint64, event, status string) error {
		gotID, gotEvent, gotStatus = id, event, status
		return nil
	}
	n := NewNotifier(&fakeEmail{}, &fakeSMS{}, publish)

	n.NotifyParties(context.Background(), testParties(), testBooking(model.StatusPending), EventCreated)

	assert.Equal(t, uint64(42), gotID)
	assert.Equal(t, "booking.created", gotEvent)
	assert.Equal(t, "pending", gotStatus)
}

func TestMessageFor_PaidIncludesAmountAndTransaction(t *testing.T) {
	b := testBooking(model.StatusConfirmed)

	subj, body := messageFor(EventPaid, false, b)
	assert.Contains(t, subj, "#42")
	assert.Contains(t, body, "300.00")
	assert.Contains(t, body, "pay_123")
	assert.Contains(t, body, "Confirmed")

	_, hostBody := messageFor(EventPaid, true, b)
	assert.Contains(t, hostBody, "300.00")
}

func TestMessageFor_StatusChangeHostVariant(t *testing.T) {
	b := testBooking(model.StatusCancelled)

	_, userBody := messageFor(EventStatusChanged, false, b)
	assert.Contains(t, userBody, "Your wedding booking #42")
	assert.Contains(t, userBody, "Cancelled")

	// Hosts must not be addressed as the booking's owner.
	_, hostBody := messageFor(EventStatusChanged, true, b)
	assert.NotContains(t, hostBody, "Your")
	assert.Contains(t, hostBody, "wedding booking #42")
	assert.Contains(t, hostBody, "Cancelled")
}

func TestDateRange(t *testing.T) {
	start := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "02 Oct 2026", dateRange(model.EventDetails{StartDate: start}))
	assert.Equal(t, "02 Oct 2026 to 04 Oct 2026",
		dateRange(model.EventDetails{StartDate: start, EndDate: start.AddDate(0, 0, 2)}))
}

func TestPlanRecipients_UserFirst(t *testing.T) {
	rs := planRecipients(testParties(), testBooking(model.StatusPending), EventCreated)

	require.Len(t, rs, 3)
	assert.Equal(t, "asha@example.com", rs[0].contact.Email)
}

package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventra/eventra-backend/internal/model"
	"github.com/eventra/eventra-backend/internal/repository"
)

// Fakes over the store seams. Embedding the interface keeps them short:
// a method a test never exercises panics instead of returning junk.

type fakeBookings struct {
	BookingStore
	bookings  map[uint64]*model.Booking
	flagCalls int
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return *b, nil
}

func (f *fakeBookings) MarkPaidCAS(_ context.Context, id uint64, txnID, method string, when time.Time) error {
	b, ok := f.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if b.Payment.IsPaid {
		return repository.ErrAlreadyPaid
	}
	txn := txnID
	b.Payment.IsPaid = true
	b.Payment.TransactionID = &txn
	b.Payment.Method = method
	b.Payment.PaidAt = &when
	b.Status = model.StatusConfirmed
	return nil
}

func (f *fakeBookings) SetNotificationFlags(_ context.Context, id uint64, fl model.NotificationFlags) error {
	f.flagCalls++
	if b, ok := f.bookings[id]; ok {
		b.Notifications.EmailSent = b.Notifications.EmailSent || fl.EmailSent
		b.Notifications.SMSSent = b.Notifications.SMSSent || fl.SMSSent
	}
	return nil
}

type fakeUsers struct {
	UserStore
	byID   map[uint64]model.User
	emails map[string]bool
	nextID uint64
}

func (f *fakeUsers) Create(_ context.Context, name, email, phone, password string, cost int) (uint64, error) {
	if f.emails == nil {
		f.emails = map[string]bool{}
	}
	if f.emails[email] {
		return 0, repository.ErrConflict
	}
	f.emails[email] = true
	f.nextID++
	return f.nextID, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeHosts struct {
	HostStore
	byID      map[uint64]model.Host
	lastList  repository.HostListQuery
	listOut   []model.Host
	listTotal int64
}

func (f *fakeHosts) GetByID(_ context.Context, id uint64) (model.Host, error) {
	h, ok := f.byID[id]
	if !ok {
		return model.Host{}, repository.ErrNotFound
	}
	return h, nil
}

func (f *fakeHosts) GetVerified(_ context.Context, id uint64, t model.HostType) (model.Host, error) {
	h, ok := f.byID[id]
	if !ok || h.HostType != t || !h.IsVerified || !h.IsActive {
		return model.Host{}, repository.ErrNotFound
	}
	return h, nil
}

func (f *fakeHosts) List(_ context.Context, q repository.HostListQuery) ([]model.Host, int64, error) {
	f.lastList = q
	return f.listOut, f.listTotal, nil
}

// Counting senders satisfy the notify interfaces so handler tests can
// observe fan-out volume.

type countingEmail struct{ sent int }

func (c *countingEmail) Send(context.Context, string, string, string) error {
	c.sent++
	return nil
}

type countingSMS struct{ sent int }

func (c *countingSMS) Send(context.Context, string, string) error {
	c.sent++
	return nil
}

// jsonCtx builds an Echo context carrying a JSON request body.
func jsonCtx(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// asActor stamps the context the way the JWT middleware does.
func asActor(c echo.Context, kind model.PrincipalKind, id uint64) {
	c.Set("principal_id", id)
	c.Set("kind", string(kind))
}

package handler

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eventra/eventra-backend/internal/config"
	"github.com/eventra/eventra-backend/internal/model"
	"github.com/eventra/eventra-backend/internal/notify"
	"github.com/eventra/eventra-backend/internal/repository"
)

// BookingHandler implements booking creation, listing and the status state
// machine, all funnelling notifications through the shared fan-out.
type BookingHandler struct {
	Cfg      config.Config
	Bookings BookingStore
	Users    UserStore
	Hosts    HostStore
	Notifier *notify.Notifier
}

func NewBookingHandler(cfg config.Config, b BookingStore, u UserStore,
	h HostStore, n *notify.Notifier) *BookingHandler {
	if b == nil || u == nil || h == nil || n == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Cfg: cfg, Bookings: b, Users: u, Hosts: h, Notifier: n}
}

type bookingServiceReq struct {
	ServiceProvider uint64  `json:"serviceProvider"`
	ServiceType     string  `json:"serviceType"`
	Details         string  `json:"details"`
	Price           float64 `json:"price"`
}

type createBookingReq struct {
	Venue           *uint64               `json:"venue"`
	Services        []bookingServiceReq   `json:"services"`
	EventDetails    model.EventDetails    `json:"eventDetails"`
	CustomerDetails model.CustomerDetails `json:"customerDetails"`
	PaymentMethod   string                `json:"paymentMethod"`
}

// parties resolves the delivery contacts of everyone attached to a booking.
// Individual lookup failures are logged and skipped; a missing contact must
// not block the remaining fan-out.
func (h *BookingHandler) parties(ctx context.Context, b model.Booking) notify.Parties {
	p := notify.Parties{}
	if u, err := h.Users.GetByID(ctx, b.UserID); err == nil {
		p.User = notify.Contact{Name: u.Name, Email: u.Email, Phone: u.Phone}
	} else {
		log.Printf("booking %d: resolving user %d failed: %v", b.ID, b.UserID, err)
		p.User = notify.Contact{Name: b.Customer.Name, Phone: b.Customer.Phone}
	}
	if b.VenueID != nil {
		if host, err := h.Hosts.GetByID(ctx, *b.VenueID); err == nil {
			p.Venue = &notify.Contact{Name: host.Name, Email: host.Email, Phone: host.Phone}
		} else {
			log.Printf("booking %d: resolving venue %d failed: %v", b.ID, *b.VenueID, err)
		}
	}
	for _, pid := range b.ProviderIDs() {
		host, err := h.Hosts.GetByID(ctx, pid)
		if err != nil {
			log.Printf("booking %d: resolving provider %d failed: %v", b.ID, pid, err)
			continue
		}
		p.Providers = append(p.Providers, notify.Contact{Name: host.Name, Email: host.Email, Phone: host.Phone})
	}
	return p
}

// fanOut runs the shared notification fan-out and records the best-effort
// delivery flags. Failures never propagate to the caller.
func (h *BookingHandler) fanOut(b model.Booking, event notify.EventKind) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	flags := h.Notifier.NotifyParties(ctx, h.parties(ctx, b), b, event)
	if err := h.Bookings.SetNotificationFlags(ctx, b.ID, flags); err != nil {
		log.Printf("booking %d: recording notification flags failed: %v", b.ID, err)
	}
}

// Create handles POST /v1/bookings. Validation order: structural and
// temporal invariants first, then reference resolution against verified
// hosts, then the transactional insert with its own window guard.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	b := model.Booking{
		UserID:   actor.ID,
		VenueID:  req.Venue,
		Event:    req.EventDetails,
		Customer: req.CustomerDetails,
		Payment:  model.PaymentDetails{Method: strings.ToLower(strings.TrimSpace(req.PaymentMethod))},
	}
	for _, s := range req.Services {
		b.Services = append(b.Services, model.BookingService{
			ProviderID:  s.ServiceProvider,
			ServiceType: model.ServiceType(strings.ToLower(strings.TrimSpace(s.ServiceType))),
			Details:     s.Details,
			Price:       s.Price,
		})
	}
	if err := b.ValidateNew(time.Now().UTC()); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	total := 0.0
	if b.VenueID != nil {
		venue, err := h.Hosts.GetVerified(ctx, *b.VenueID, model.HostVenue)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, http.StatusNotFound, "venue not found or not verified")
			}
			return fail(c, http.StatusInternalServerError, "resolving venue failed")
		}
		total += venue.BasePrice
	}
	for _, s := range b.Services {
		wantType, ok := model.HostTypeForService(s.ServiceType)
		if !ok {
			return fail(c, http.StatusBadRequest, "unknown service type: "+string(s.ServiceType))
		}
		if _, err := h.Hosts.GetVerified(ctx, s.ProviderID, wantType); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, http.StatusNotFound, "service provider not found or not verified")
			}
			return fail(c, http.StatusInternalServerError, "resolving provider failed")
		}
		total += s.Price
	}

	b.Payment.Total = total
	b.Payment.Advance = math.Round(total*float64(h.Cfg.AdvancePercent)) / 100
	b.Payment.Remaining = b.Payment.Total - b.Payment.Advance

	if err := h.Bookings.Create(ctx, &b); err != nil {
		if errors.Is(err, model.ErrStartDateTooFar) {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		return fail(c, http.StatusInternalServerError, "create booking failed")
	}

	h.fanOut(b, notify.EventCreated)
	return respond(c, http.StatusCreated, b)
}

// List handles GET /v1/bookings: users see bookings they own, hosts see
// bookings referencing them.
func (h *BookingHandler) List(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var bookings []model.Booking
	if actor.Kind == model.KindHost {
		bookings, err = h.Bookings.ListForHost(ctx, actor.ID)
	} else {
		bookings, err = h.Bookings.ListForUser(ctx, actor.ID)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "listing bookings failed")
	}
	return respond(c, http.StatusOK, bookings)
}

// canRead reports whether the actor may view the booking: the owning user,
// any referenced host, or an administrator.
func canRead(actor model.Actor, b model.Booking) bool {
	switch actor.Kind {
	case model.KindAdmin:
		return true
	case model.KindUser:
		return actor.ID == b.UserID
	case model.KindHost:
		return b.References(actor.ID)
	}
	return false
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "booking not found")
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		return fail(c, http.StatusInternalServerError, "load booking failed")
	}
	if !canRead(actor, b) {
		return fail(c, http.StatusForbidden, "forbidden")
	}
	return respond(c, http.StatusOK, b)
}

// UpdateStatus handles PUT /v1/bookings/:id/status. The transition is
// persisted with a conditional update keyed on the expected current status;
// losing that race is reported as a conflict rather than silently
// overwriting a concurrent transition.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "booking not found")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	target := model.Status(strings.ToLower(strings.TrimSpace(req.Status)))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		return fail(c, http.StatusInternalServerError, "load booking failed")
	}

	if err := b.CanTransition(actor, target); err != nil {
		if errors.Is(err, model.ErrUnknownStatus) {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		return fail(c, http.StatusForbidden, err.Error())
	}

	won, err := h.Bookings.UpdateStatusCAS(ctx, b.ID, b.Status, target)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "update status failed")
	}
	if !won {
		return fail(c, http.StatusConflict, "booking status changed concurrently")
	}
	b.Status = target

	h.fanOut(b, notify.EventStatusChanged)
	return respond(c, http.StatusOK, b)
}

// Delete handles DELETE /v1/bookings/:id. Hard deletion is reserved for
// administrators.
func (h *BookingHandler) Delete(c echo.Context) error {
	actor, err := principal(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	if actor.Kind != model.KindAdmin {
		return fail(c, http.StatusForbidden, "administrator only")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return fail(c, http.StatusNotFound, "booking not found")
	}
	if err := h.Bookings.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	return c.NoContent(http.StatusNoContent)
}

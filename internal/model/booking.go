package model

import (
	"errors"
	"strings"
	"time"
)

// Status is the lifecycle state of a booking.
//
//	pending   -> confirmed | cancelled
//	confirmed -> completed | cancelled
//	cancelled, completed are terminal
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Title renders the status for notification messages ("pending" -> "Pending").
func (s Status) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Errors surfaced by booking validation and transition checks.
var (
	ErrUnknownStatus         = errors.New("unknown booking status")
	ErrTransitionForbidden   = errors.New("transition not allowed for this actor")
	ErrStartDateTooFar       = errors.New("start date exceeds the 3 month booking window")
	ErrMissingVenueOrService = errors.New("booking needs a venue or at least one service")
	ErrInvalidEventDates     = errors.New("event end date precedes start date")
	ErrMissingCustomer       = errors.New("customer name and phone are required")
)

// MaxStartWindow is how far in the future a booking may start.
const MaxStartWindow = 3 // months

// BookingService is one service entry on a booking: a provider host, the
// service classification it fulfils, free-text details and the agreed price.
type BookingService struct {
	ProviderID  uint64      `json:"serviceProvider"`
	ServiceType ServiceType `json:"serviceType"`
	Details     string      `json:"details,omitempty"`
	Price       float64     `json:"price"`
}

// EventDetails describes the event being booked.
type EventDetails struct {
	Type       string    `json:"type"`
	GuestCount uint32    `json:"guestCount"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Request    string    `json:"specialRequest,omitempty"`
}

// CustomerDetails is the contact snapshot captured at booking time. It is
// deliberately independent of the owning user's current profile.
type CustomerDetails struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	NationalID string `json:"nationalId,omitempty"`
}

// PaymentDetails tracks the monetary state of a booking. Amounts are major
// currency units; conversion to the provider's minor unit happens only when
// a charge is created.
type PaymentDetails struct {
	Total         float64    `json:"totalAmount"`
	Advance       float64    `json:"advanceAmount"`
	Remaining     float64    `json:"remainingAmount"`
	Method        string     `json:"method,omitempty"`
	IsPaid        bool       `json:"isPaid"`
	TransactionID *string    `json:"transactionId,omitempty"`
	PaidAt        *time.Time `json:"paymentDate,omitempty"`
}

// PaymentMethodOnline is the only method eligible for provider charges.
const PaymentMethodOnline = "online"

// NotificationFlags records best-effort delivery attempts. These are
// bookkeeping, not a delivery guarantee ledger.
type NotificationFlags struct {
	EmailSent bool `json:"emailSent"`
	SMSSent   bool `json:"smsSent"`
	CallSent  bool `json:"callSent"`
}

// Booking is a reservation owned by a user, optionally referencing one venue
// host and any number of service-provider hosts.
type Booking struct {
	ID            uint64            `json:"id"`
	UserID        uint64            `json:"user"`
	VenueID       *uint64           `json:"venue,omitempty"`
	IsServiceOnly bool              `json:"isServiceOnly"`
	Services      []BookingService  `json:"services,omitempty"`
	Event         EventDetails      `json:"eventDetails"`
	Customer      CustomerDetails   `json:"customerDetails"`
	Payment       PaymentDetails    `json:"payment"`
	Status        Status            `json:"status"`
	Notifications NotificationFlags `json:"notifications"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Actor is the authenticated principal requesting an operation.
type Actor struct {
	Kind PrincipalKind
	ID   uint64
}

// WithinStartWindow reports whether start is no later than now plus the
// maximum booking window. Enforced at the API layer and re-checked by the
// repository before insert.
func WithinStartWindow(start, now time.Time) bool {
	return !start.After(now.AddDate(0, MaxStartWindow, 0))
}

// ValidateNew checks structural and temporal invariants of a booking about
// to be created. It does not resolve referenced hosts; that requires the
// repository.
func (b *Booking) ValidateNew(now time.Time) error {
	if b.VenueID == nil && len(b.Services) == 0 {
		return ErrMissingVenueOrService
	}
	if b.Event.StartDate.IsZero() || !WithinStartWindow(b.Event.StartDate, now) {
		return ErrStartDateTooFar
	}
	if !b.Event.EndDate.IsZero() && b.Event.EndDate.Before(b.Event.StartDate) {
		return ErrInvalidEventDates
	}
	if strings.TrimSpace(b.Customer.Name) == "" || strings.TrimSpace(b.Customer.Phone) == "" {
		return ErrMissingCustomer
	}
	b.IsServiceOnly = b.VenueID == nil && len(b.Services) > 0
	return nil
}

// References reports whether the booking references the given host, either
// as its venue or as one of its service providers.
func (b *Booking) References(hostID uint64) bool {
	if b.VenueID != nil && *b.VenueID == hostID {
		return true
	}
	for _, s := range b.Services {
		if s.ProviderID == hostID {
			return true
		}
	}
	return false
}

// ProviderIDs returns the distinct service-provider host ids on the booking.
func (b *Booking) ProviderIDs() []uint64 {
	seen := make(map[uint64]struct{}, len(b.Services))
	out := make([]uint64, 0, len(b.Services))
	for _, s := range b.Services {
		if _, ok := seen[s.ProviderID]; ok {
			continue
		}
		seen[s.ProviderID] = struct{}{}
		out = append(out, s.ProviderID)
	}
	return out
}

// nextStates enumerates the legal moves of the status machine regardless of
// who is asking.
var nextStates = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func machineAllows(from, to Status) bool {
	for _, s := range nextStates[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransition decides whether actor may move the booking to target.
// Owning users may only cancel; referenced hosts may confirm, cancel or
// complete; admins inherit host powers. ErrUnknownStatus means the target
// is not a status at all; ErrTransitionForbidden covers both role and
// state-machine violations.
func (b *Booking) CanTransition(actor Actor, target Status) error {
	if !ValidStatus(target) {
		return ErrUnknownStatus
	}
	if !machineAllows(b.Status, target) {
		return ErrTransitionForbidden
	}
	switch actor.Kind {
	case KindUser:
		if actor.ID != b.UserID || target != StatusCancelled {
			return ErrTransitionForbidden
		}
	case KindHost:
		if !b.References(actor.ID) {
			return ErrTransitionForbidden
		}
	case KindAdmin:
		// admins act with full transition rights
	default:
		return ErrTransitionForbidden
	}
	return nil
}

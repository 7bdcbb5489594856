// Package notify implements the multi-party notification fan-out shared by
// booking creation, status transitions and both payment reconciliation
// paths. Delivery is best-effort: failures are logged and never abort the
// operation that triggered the fan-out.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/eventra/eventra-backend/internal/model"
)

// EventKind parameterizes the fan-out. All four call sites go through the
// same NotifyParties entry point with a different kind.
type EventKind string

const (
	EventCreated       EventKind = "booking.created"
	EventStatusChanged EventKind = "booking.status_changed"
	EventPaid          EventKind = "booking.paid"
)

// EmailSender delivers a single email. Implementations must honor ctx.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a single SMS. Implementations must honor ctx.
type SMSSender interface {
	Send(ctx context.Context, to, message string) error
}

// Contact is the delivery address of one party.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Parties holds the resolved contacts of everyone attached to a booking:
// the owning user, the venue host if present, and the distinct service
// providers.
type Parties struct {
	User      Contact
	Venue     *Contact
	Providers []Contact
}

// Publisher pushes a fan-out event onto the broker for the audit consumer.
type Publisher func(ctx context.Context, bookingID uint64, event string, status string) error

// Notifier fans notifications out to a booking's parties. Each delivery
// call runs under its own timeout so a slow gateway cannot stall the
// request that triggered it.
type Notifier struct {
	Email   EmailSender
	SMS     SMSSender
	Publish Publisher // optional; nil disables the audit event
	Timeout time.Duration
}

// NewNotifier wires a notifier with the default per-delivery timeout.
func NewNotifier(email EmailSender, sms SMSSender, publish Publisher) *Notifier {
	return &Notifier{Email: email, SMS: sms, Publish: publish, Timeout: 5 * time.Second}
}

// recipient pairs a contact with the message addressed to it.
type recipient struct {
	contact Contact
	subject string
	body    string
}

// hostsIncluded decides whether the venue and providers are notified for a
// given event. Creation and payment always inform them; status changes only
// reach hosts when the booking was cancelled or completed.
func hostsIncluded(event EventKind, status model.Status) bool {
	switch event {
	case EventCreated, EventPaid:
		return true
	case EventStatusChanged:
		return status == model.StatusCancelled || status == model.StatusCompleted
	}
	return false
}

func dateRange(e model.EventDetails) string {
	const layout = "02 Jan 2006"
	if e.EndDate.IsZero() || e.EndDate.Equal(e.StartDate) {
		return e.StartDate.Format(layout)
	}
	return e.StartDate.Format(layout) + " to " + e.EndDate.Format(layout)
}

// messageFor renders the subject and body for one party. Every message
// carries the booking id, event type, date range and the current status in
// title case; payment messages add the amount and transaction id.
func messageFor(event EventKind, isHost bool, b model.Booking) (string, string) {
	when := dateRange(b.Event)
	switch event {
	case EventCreated:
		if isHost {
			return fmt.Sprintf("New booking request #%d", b.ID),
				fmt.Sprintf("You have a new %s booking request #%d for %s. Status: %s.",
					b.Event.Type, b.ID, when, b.Status.Title())
		}
		return fmt.Sprintf("Booking #%d received", b.ID),
			fmt.Sprintf("We received your %s booking #%d for %s. Status: %s.",
				b.Event.Type, b.ID, when, b.Status.Title())
	case EventPaid:
		txn := ""
		if b.Payment.TransactionID != nil {
			txn = *b.Payment.TransactionID
		}
		if isHost {
			return fmt.Sprintf("Booking #%d paid", b.ID),
				fmt.Sprintf("Advance of %.2f received for %s booking #%d (%s), transaction %s. Status: %s.",
					b.Payment.Advance, b.Event.Type, b.ID, when, txn, b.Status.Title())
		}
		return fmt.Sprintf("Payment confirmed for booking #%d", b.ID),
			fmt.Sprintf("Your advance payment of %.2f for %s booking #%d (%s) is confirmed, transaction %s. Status: %s.",
				b.Payment.Advance, b.Event.Type, b.ID, when, txn, b.Status.Title())
	default: // EventStatusChanged
		if isHost {
			return fmt.Sprintf("Booking #%d %s", b.ID, b.Status.Title()),
				fmt.Sprintf("The %s booking #%d for %s has been %s.",
					b.Event.Type, b.ID, when, b.Status.Title())
		}
		return fmt.Sprintf("Booking #%d %s", b.ID, b.Status.Title()),
			fmt.Sprintf("Your %s booking #%d for %s is now %s.",
				b.Event.Type, b.ID, when, b.Status.Title())
	}
}

// planRecipients builds the full recipient list for an event. The user is
// always first; hosts follow when the event reaches them.
func planRecipients(p Parties, b model.Booking, event EventKind) []recipient {
	out := make([]recipient, 0, 2+len(p.Providers))
	subj, body := messageFor(event, false, b)
	out = append(out, recipient{contact: p.User, subject: subj, body: body})

	if !hostsIncluded(event, b.Status) {
		return out
	}
	hostSubj, hostBody := messageFor(event, true, b)
	if p.Venue != nil {
		out = append(out, recipient{contact: *p.Venue, subject: hostSubj, body: hostBody})
	}
	for _, pr := range p.Providers {
		out = append(out, recipient{contact: pr, subject: hostSubj, body: hostBody})
	}
	return out
}

// NotifyParties delivers one email+SMS pair per planned recipient and
// returns the best-effort delivery flags the caller persists on the
// booking. It never returns an error: delivery problems are logged and the
// triggering state change stays authoritative.
func (n *Notifier) NotifyParties(ctx context.Context, p Parties, b model.Booking, event EventKind) model.NotificationFlags {
	var flags model.NotificationFlags
	for _, r := range planRecipients(p, b, event) {
		if n.Email != nil && r.contact.Email != "" {
			if err := n.send(ctx, func(c context.Context) error {
				return n.Email.Send(c, r.contact.Email, r.subject, r.body)
			}); err != nil {
				log.Printf("notify: email to %s for booking %d failed: %v", r.contact.Email, b.ID, err)
			} else {
				flags.EmailSent = true
			}
		}
		if n.SMS != nil && r.contact.Phone != "" {
			if err := n.send(ctx, func(c context.Context) error {
				return n.SMS.Send(c, r.contact.Phone, r.body)
			}); err != nil {
				log.Printf("notify: sms to %s for booking %d failed: %v", r.contact.Phone, b.ID, err)
			} else {
				flags.SMSSent = true
			}
		}
	}
	if n.Publish != nil {
		if err := n.Publish(ctx, b.ID, string(event), string(b.Status)); err != nil {
			log.Printf("notify: publish event for booking %d failed: %v", b.ID, err)
		}
	}
	return flags
}

func (n *Notifier) send(ctx context.Context, f func(context.Context) error) error {
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return f(cctx)
}

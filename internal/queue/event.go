// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingEvent is published whenever a notification fan-out runs. It gives
// downstream consumers enough to log or trigger analytics without querying
// the primary database.
type BookingEvent struct {
	BookingID  uint64 `json:"booking_id"`
	Event      string `json:"event"`  // booking.created | booking.status_changed | booking.paid
	Status     string `json:"status"` // booking status after the triggering operation
	OccurredAt string `json:"occurred_at"`
}

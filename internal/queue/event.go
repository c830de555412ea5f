// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// Booking actions carried in BookingMessage.Action.
const (
	ActionConfirmed = "confirmed"
	ActionCancelled = "cancelled"
)

// BookingMessage is published after a booking transaction commits,
// for both creations and cancellations. It carries enough information
// for downstream consumers to log or notify without querying the
// primary database.
type BookingMessage struct {
	Action      string `json:"action"`
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	EventID     uint64 `json:"event_id"`
	EventName   string `json:"event_name"`
	NumTickets  int64  `json:"num_tickets"`
	TotalCents  int64  `json:"total_cents"`
	OccurredAt  string `json:"occurred_at"`
}

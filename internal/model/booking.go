package model

import "time"

// Booking statuses stored in bookings.status.
const (
	BookingActive    = "active"
	BookingCancelled = "cancelled"
)

// Booking records a user's reservation of NumTickets tickets for an
// event. TotalCents is snapshotted at booking time (num_tickets *
// the event's price_cents at that moment) and is never recomputed,
// so later price changes do not affect existing bookings.
// PaymentMethod is an opaque label; no payment processing happens
// here.
//
// For every event the sum of NumTickets over its active bookings
// plus the event's AvailableTickets equals the original pool size.
// Creation and cancellation each run inside one transaction with
// the matching ledger decrement or increment to keep that true.
type Booking struct {
	ID            uint64    // bookings.id
	UserID        uint64    // bookings.user_id
	EventID       uint64    // bookings.event_id
	NumTickets    int64     // bookings.num_tickets
	TotalCents    int64     // bookings.total_cents
	PaymentMethod string    // bookings.payment_method
	Status        string    // bookings.status (active or cancelled)
	BookingDate   time.Time // bookings.booking_date
	UpdatedAt     time.Time // bookings.updated_at
}

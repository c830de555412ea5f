package model

import "time"

// Event statuses stored in events.status. A cancelled event is soft
// deleted: the row stays because bookings keep referencing it.
const (
	EventActive    = "active"
	EventCancelled = "cancelled"
)

// Artist represents a row in the `artists` table.
type Artist struct {
	ID          uint64 // artists.id
	Name        string // artists.name
	Description string // artists.description
}

// Event represents a ticketed occurrence with a finite ticket pool.
// AvailableTickets is the authoritative remaining-capacity counter;
// it is mutated only inside ledger transactions (EventRepo.ReserveTx
// and ReleaseTx) and must never go negative. Prices are stored in
// cents to keep booking totals exact.
type Event struct {
	ID               uint64    // events.id
	Name             string    // events.name
	Description      string    // events.description
	Date             time.Time // events.date
	Venue            string    // events.venue
	PriceCents       int64     // events.price_cents
	AvailableTickets int64     // events.available_tickets
	ArtistID         uint64    // events.artist_id
	Status           string    // events.status (active or cancelled)
	CreatedAt        time.Time // events.created_at
	UpdatedAt        time.Time // events.updated_at
}

// IsActive reports whether the event can still accept bookings.
func (e *Event) IsActive() bool { return e.Status == EventActive }

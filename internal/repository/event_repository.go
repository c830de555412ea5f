// This file implements the inventory ledger for events. The
// available_tickets counter is the single contended resource in the
// system: ReserveTx and ReleaseTx are the only code allowed to write
// it, and both operate on an open transaction supplied by the caller
// so the counter change commits together with the booking row it
// pays for.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"event-booking/internal/model"
)

// EventRepo manages persistence for events and owns the ticket ledger.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

// ReserveTx atomically takes qty tickets from the event's pool inside
// the caller's transaction and returns the event's current price in
// cents so the booking total can be snapshotted.
//
// The SELECT ... FOR UPDATE acquires a row lock on the event, so two
// concurrent reservations against the same event serialise: the
// second one blocks until the first commits and then sees the
// decremented counter. Checking availability and decrementing in
// separate statements without the lock would let both read the same
// stale count and oversell the pool.
func (r *EventRepo) ReserveTx(ctx context.Context, tx *sql.Tx, eventID uint64, qty int64) (int64, error) {
	if qty < 1 {
		return 0, ErrInvalidQuantity
	}
	const lock = `SELECT price_cents, status, available_tickets FROM events WHERE id = ? FOR UPDATE`
	var (
		priceCents int64
		status     string
		available  int64
	)
	err := tx.QueryRowContext(ctx, lock, eventID).Scan(&priceCents, &status, &available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrEventNotFound
		}
		return 0, err
	}
	if status != model.EventActive {
		return 0, ErrEventNotActive
	}
	if available < qty {
		return 0, ErrInsufficientTickets
	}
	const dec = `UPDATE events SET available_tickets = available_tickets - ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, dec, qty, eventID); err != nil {
		return 0, err
	}
	return priceCents, nil
}

// ReleaseTx returns qty tickets to the event's pool inside the
// caller's transaction. Callers must release at most once per
// cancelled booking; the AlreadyCancelled guard in the booking
// service enforces that.
func (r *EventRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, eventID uint64, qty int64) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	const inc = `UPDATE events SET available_tickets = available_tickets + ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, inc, qty, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Create inserts a new event and populates the generated ID and the
// DB-default fields (status, timestamps) on the given model.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (name, description, date, venue, price_cents, available_tickets, artist_id, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.Name, e.Description, e.Date, e.Venue, e.PriceCents, e.AvailableTickets, e.ArtistID, model.EventActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const sel = `SELECT id, name, description, date, venue, price_cents, available_tickets, artist_id, status, created_at, updated_at
	             FROM events WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, e.ID).Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.Venue,
		&e.PriceCents, &e.AvailableTickets, &e.ArtistID, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
}

// Update modifies an event's descriptive fields, price and pool size.
// It does not touch status; cancellation goes through Cancel.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	const q = `UPDATE events
	           SET name = ?, description = ?, date = ?, venue = ?, price_cents = ?, available_tickets = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		e.Name, e.Description, e.Date, e.Venue, e.PriceCents, e.AvailableTickets, e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing row from a no-op update.
		var exists uint64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM events WHERE id = ?`, e.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}

// Cancel soft deletes an event by setting its status to 'cancelled'.
// The row is kept because bookings reference it.
func (r *EventRepo) Cancel(ctx context.Context, id uint64) error {
	const q = `UPDATE events SET status = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.EventCancelled, id, model.EventActive)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var status string
		err := r.db.QueryRowContext(ctx, `SELECT status FROM events WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}
		return ErrEventNotActive
	}
	return nil
}

// GetByID retrieves a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT id, name, description, date, venue, price_cents, available_tickets, artist_id, status, created_at, updated_at
	           FROM events WHERE id = ?`
	var e model.Event
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.Date, &e.Venue,
		&e.PriceCents, &e.AvailableTickets, &e.ArtistID, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// EventSummary is an event joined with its artist name, as shown on
// the public events page and the admin dashboard.
type EventSummary struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Venue            string    `json:"venue"`
	PriceCents       int64     `json:"price_cents"`
	AvailableTickets int64     `json:"available_tickets"`
	Status           string    `json:"status"`
	ArtistName       string    `json:"artist_name"`
}

// List returns all events joined with artist names, ordered by date.
// When upcomingOnly is set it keeps only active future events that
// still have tickets, which is the set offered on the booking form.
func (r *EventRepo) List(ctx context.Context, upcomingOnly bool) ([]EventSummary, error) {
	q := `SELECT e.id, e.name, e.description, e.date, e.venue, e.price_cents, e.available_tickets, e.status, a.name
	      FROM events e
	      JOIN artists a ON a.id = e.artist_id`
	if upcomingOnly {
		q += ` WHERE e.date >= CURDATE() AND e.status = 'active' AND e.available_tickets > 0`
	}
	q += ` ORDER BY e.date`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]EventSummary, 0)
	for rows.Next() {
		var e EventSummary
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.Venue,
			&e.PriceCents, &e.AvailableTickets, &e.Status, &e.ArtistName); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListArtists returns all artists, for the admin event form.
func (r *EventRepo) ListArtists(ctx context.Context) ([]model.Artist, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description FROM artists ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artists := make([]model.Artist, 0)
	for rows.Next() {
		var a model.Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

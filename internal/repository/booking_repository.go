package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"event-booking/internal/model"
)

// BookingRepo provides persistence for booking records. Bookings are
// never inserted or cancelled outside a transaction: the booking
// service pairs every CreateTx with a ledger decrement and every
// CancelTx with a ledger increment in the same atomic unit.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for transaction control.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new booking within the caller's transaction and
// populates the generated ID and DB-default fields on the model.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, event_id, num_tickets, total_cents, payment_method, status, booking_date)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.UserID, b.EventID, b.NumTickets, b.TotalCents, b.PaymentMethod, b.Status, b.BookingDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT id, user_id, event_id, num_tickets, total_cents, payment_method, status, booking_date, updated_at
	             FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(
		&b.ID, &b.UserID, &b.EventID, &b.NumTickets, &b.TotalCents,
		&b.PaymentMethod, &b.Status, &b.BookingDate, &b.UpdatedAt,
	)
}

// GetForUpdateTx loads a booking under a row lock so that concurrent
// cancellations of the same booking serialise. Returns
// ErrBookingNotFound when the row does not exist.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	const q = `SELECT id, user_id, event_id, num_tickets, total_cents, payment_method, status, booking_date, updated_at
	           FROM bookings WHERE id = ? FOR UPDATE`
	var b model.Booking
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.EventID, &b.NumTickets, &b.TotalCents,
		&b.PaymentMethod, &b.Status, &b.BookingDate, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// CancelTx flips a booking to 'cancelled' within the caller's
// transaction. The caller must have verified ownership and that the
// booking is still active (GetForUpdateTx) before calling this.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.BookingCancelled, id, model.BookingActive)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyCancelled
	}
	return nil
}

// BookingDetail is a booking joined with its event, as shown on the
// user dashboard.
type BookingDetail struct {
	ID            uint64    `json:"id"`
	EventID       uint64    `json:"event_id"`
	EventName     string    `json:"event_name"`
	EventDate     time.Time `json:"event_date"`
	EventVenue    string    `json:"event_venue"`
	NumTickets    int64     `json:"num_tickets"`
	TotalCents    int64     `json:"total_cents"`
	PaymentMethod string    `json:"payment_method"`
	BookingDate   time.Time `json:"booking_date"`
}

// ListActiveByUser returns the user's active bookings with event
// details, newest first. Cancelled bookings are not shown.
func (r *BookingRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.event_id, e.name, e.date, e.venue, b.num_tickets, b.total_cents, b.payment_method, b.booking_date
	           FROM bookings b
	           JOIN events e ON e.id = b.event_id
	           WHERE b.user_id = ? AND b.status = 'active'
	           ORDER BY b.booking_date DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(&d.ID, &d.EventID, &d.EventName, &d.EventDate, &d.EventVenue,
			&d.NumTickets, &d.TotalCents, &d.PaymentMethod, &d.BookingDate); err != nil {
			return nil, err
		}
		bookings = append(bookings, d)
	}
	return bookings, rows.Err()
}

// AdminBookingDetail extends BookingDetail with the booking's owner
// and status for the admin dashboard, which lists every booking
// including cancelled ones.
type AdminBookingDetail struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	UserName    string    `json:"user_name"`
	EventName   string    `json:"event_name"`
	NumTickets  int64     `json:"num_tickets"`
	TotalCents  int64     `json:"total_cents"`
	Status      string    `json:"status"`
	BookingDate time.Time `json:"booking_date"`
}

// ListAll returns every booking joined with user and event names,
// newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]AdminBookingDetail, error) {
	const q = `SELECT b.id, u.id, CONCAT(u.first_name, ' ', u.last_name), e.name, b.num_tickets, b.total_cents, b.status, b.booking_date
	           FROM bookings b
	           JOIN users u ON u.id = b.user_id
	           JOIN events e ON e.id = b.event_id
	           ORDER BY b.booking_date DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]AdminBookingDetail, 0)
	for rows.Next() {
		var d AdminBookingDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.UserName, &d.EventName,
			&d.NumTickets, &d.TotalCents, &d.Status, &d.BookingDate); err != nil {
			return nil, err
		}
		bookings = append(bookings, d)
	}
	return bookings, rows.Err()
}

// Package service implements the booking manager: creation and
// cancellation of bookings as single atomic units against the ticket
// ledger, with ownership checks and bounded retry on transient
// transaction conflicts.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"

	"event-booking/internal/model"
	"event-booking/internal/queue"
	"event-booking/internal/repository"
)

// ErrTxConflict is returned after the retry budget for a transient
// database conflict (deadlock or lock wait timeout) is exhausted.
// The caller may retry the whole request.
var ErrTxConflict = errors.New("booking conflict, please retry")

// maxTxAttempts bounds the internal retry loop. Conflicts on a single
// event row resolve quickly, so a small budget is enough; the point
// is to never loop forever.
const maxTxAttempts = 3

// BookingService orchestrates booking creation and cancellation. The
// ticket decrement and the booking insert always commit together, or
// neither does; likewise the status flip and the ticket increment on
// cancellation. Handlers never touch the ledger directly.
type BookingService struct {
	db       *sql.DB
	events   *repository.EventRepo
	bookings *repository.BookingRepo

	now     func() time.Time
	publish func(context.Context, queue.BookingMessage) error
}

// NewBookingService constructs a BookingService. Both repositories
// must share the database handle so transactions can span them.
func NewBookingService(events *repository.EventRepo, bookings *repository.BookingRepo) *BookingService {
	if events == nil || bookings == nil {
		panic("nil repository passed to NewBookingService")
	}
	return &BookingService{
		db:       events.DB(),
		events:   events,
		bookings: bookings,
		now:      time.Now,
		publish:  queue.PublishBookingMessage,
	}
}

// CreateBooking reserves numTickets from the event's pool and records
// a booking, as one transaction. The booking total is snapshotted
// from the event's price at reservation time and never recomputed.
// paymentMethod is stored as an opaque label.
func (s *BookingService) CreateBooking(ctx context.Context, userID, eventID uint64, numTickets int64, paymentMethod string) (*model.Booking, error) {
	if numTickets < 1 {
		return nil, repository.ErrInvalidQuantity
	}
	var booking *model.Booking
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		priceCents, err := s.events.ReserveTx(ctx, tx, eventID, numTickets)
		if err != nil {
			return err
		}
		b := &model.Booking{
			UserID:        userID,
			EventID:       eventID,
			NumTickets:    numTickets,
			TotalCents:    priceCents * numTickets,
			PaymentMethod: paymentMethod,
			Status:        model.BookingActive,
			BookingDate:   s.now().UTC(),
		}
		// If this insert fails the whole transaction rolls back and
		// the reservation above is undone with it: there is no state
		// where tickets are taken but no booking exists.
		if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, queue.ActionConfirmed, booking)
	return booking, nil
}

// CancelBooking cancels one of the requester's bookings and returns
// its tickets to the event's pool, as one transaction. Cancelling
// someone else's booking fails with ErrNotBookingOwner; cancelling
// twice fails with ErrAlreadyCancelled and credits the pool only
// once.
func (s *BookingService) CancelBooking(ctx context.Context, requesterID, bookingID uint64) error {
	var cancelled *model.Booking
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != requesterID {
			return repository.ErrNotBookingOwner
		}
		if b.Status != model.BookingActive {
			return repository.ErrAlreadyCancelled
		}
		if err := s.bookings.CancelTx(ctx, tx, b.ID); err != nil {
			return err
		}
		if err := s.events.ReleaseTx(ctx, tx, b.EventID, b.NumTickets); err != nil {
			return err
		}
		cancelled = b
		return nil
	})
	if err != nil {
		return err
	}
	s.notify(ctx, queue.ActionCancelled, cancelled)
	return nil
}

// ListBookingsForUser returns the user's active bookings with event
// details, newest first.
func (s *BookingService) ListBookingsForUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error) {
	return s.bookings.ListActiveByUser(ctx, userID)
}

// inTx runs fn inside a transaction, committing on success. Deadlocks
// and lock wait timeouts are retried up to maxTxAttempts before
// surfacing ErrTxConflict; every other error aborts immediately. The
// rollback on failure is what guarantees no partial state ever
// commits.
func (s *BookingService) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	for attempt := 1; ; attempt++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err = fn(tx); err == nil {
			if err = tx.Commit(); err == nil {
				return nil
			}
		}
		_ = tx.Rollback()
		if !isRetryable(err) {
			return err
		}
		if attempt >= maxTxAttempts {
			log.Printf("booking: giving up after %d conflicting attempts: %v", attempt, err)
			return ErrTxConflict
		}
		log.Printf("booking: transient conflict (attempt %d/%d): %v", attempt, maxTxAttempts, err)
	}
}

// isRetryable reports whether the error is a MySQL lock wait timeout
// (1205) or deadlock (1213), the two transient outcomes of contended
// row locks.
func isRetryable(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1205 || me.Number == 1213
	}
	return false
}

// notify publishes a booking message after a successful commit. The
// event name is looked up best-effort; publish failures are logged
// and ignored because the booking itself is already durable.
func (s *BookingService) notify(ctx context.Context, action string, b *model.Booking) {
	if s.publish == nil || b == nil {
		return
	}
	msg := queue.BookingMessage{
		Action:     action,
		BookingID:  b.ID,
		UserID:     b.UserID,
		EventID:    b.EventID,
		NumTickets: b.NumTickets,
		TotalCents: b.TotalCents,
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	}
	if ev, err := s.events.GetByID(ctx, b.EventID); err == nil {
		msg.EventName = ev.Name
	}
	if err := s.publish(ctx, msg); err != nil {
		log.Printf("booking: publish %s message failed: %v", action, err)
	}
}

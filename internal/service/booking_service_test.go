package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-booking/internal/model"
	"event-booking/internal/repository"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*BookingService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewBookingService(repository.NewEventRepo(db), repository.NewBookingRepo(db))
	svc.now = func() time.Time { return testNow }
	svc.publish = nil // no broker in unit tests
	return svc, mock
}

// expectReserve sets up the ledger lock, decrement, insert and
// select-back for one successful booking attempt.
func expectReserve(mock sqlmock.Sqlmock, priceCents, available int64, qty int64, bookingID int64) {
	mock.ExpectQuery(`SELECT price_cents, status, available_tickets FROM events WHERE id = \? FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
			AddRow(priceCents, "active", available))
	mock.ExpectExec(`UPDATE events SET available_tickets = available_tickets - \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(bookingID, 1))
	mock.ExpectQuery(`FROM bookings WHERE id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "event_id", "num_tickets", "total_cents",
			"payment_method", "status", "booking_date", "updated_at",
		}).AddRow(bookingID, 5, 1, qty, priceCents*qty, "card", "active", testNow, testNow))
}

func TestCreateBookingCommitsAtomically(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectReserve(mock, 2500, 10, 2, 31)
	mock.ExpectCommit()

	b, err := svc.CreateBooking(context.Background(), 5, 1, 2, "card")
	require.NoError(t, err)
	assert.Equal(t, uint64(31), b.ID)
	assert.Equal(t, int64(5000), b.TotalCents, "total is price snapshot times quantity")
	assert.Equal(t, model.BookingActive, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsBadQuantityBeforeTouchingDB(t *testing.T) {
	svc, mock := newTestService(t)

	for _, qty := range []int64{0, -3} {
		_, err := svc.CreateBooking(context.Background(), 5, 1, qty, "card")
		assert.ErrorIs(t, err, repository.ErrInvalidQuantity, "qty=%d", qty)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingInsufficientTicketsRollsBack(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
			AddRow(2500, "active", 1))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), 5, 1, 4, "card")
	assert.ErrorIs(t, err, repository.ErrInsufficientTickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingInsertFailureRollsBackReservation(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
			AddRow(2500, "active", 10))
	mock.ExpectExec(`UPDATE events SET available_tickets = available_tickets - \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnError(errors.New("insert broke"))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), 5, 1, 2, "card")
	require.Error(t, err)
	// The rollback means the decrement above never became visible.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRetriesOnDeadlock(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	expectReserve(mock, 2500, 10, 2, 32)
	mock.ExpectCommit()

	b, err := svc.CreateBooking(context.Background(), 5, 1, 2, "card")
	require.NoError(t, err)
	assert.Equal(t, uint64(32), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingGivesUpAfterRepeatedConflicts(t *testing.T) {
	svc, mock := newTestService(t)

	for i := 0; i < maxTxAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout"})
		mock.ExpectRollback()
	}

	_, err := svc.CreateBooking(context.Background(), 5, 1, 2, "card")
	assert.ErrorIs(t, err, ErrTxConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingDoesNotRetryDomainErrors(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
			AddRow(2500, "cancelled", 10))
	mock.ExpectRollback()

	_, err := svc.CreateBooking(context.Background(), 5, 1, 2, "card")
	assert.ErrorIs(t, err, repository.ErrEventNotActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two sequential bookings against a pool of three: the first takes
// two tickets, the second asks for two more and must be refused
// because only one remains.
func TestSequentialBookingsCannotOversell(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectReserve(mock, 1000, 3, 2, 41)
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
			AddRow(1000, "active", 1))
	mock.ExpectRollback()

	first, err := svc.CreateBooking(context.Background(), 5, 1, 2, "card")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), first.TotalCents)

	_, err = svc.CreateBooking(context.Background(), 6, 1, 2, "card")
	assert.ErrorIs(t, err, repository.ErrInsufficientTickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectLockedBooking(mock sqlmock.Sqlmock, id, userID, eventID uint64, qty int64, status string) {
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "event_id", "num_tickets", "total_cents",
			"payment_method", "status", "booking_date", "updated_at",
		}).AddRow(id, userID, eventID, qty, qty*1000, "card", status, testNow, testNow))
}

func TestCancelBookingReleasesTickets(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedBooking(mock, 31, 5, 1, 2, "active")
	mock.ExpectExec(`UPDATE bookings SET status = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE events SET available_tickets = available_tickets \+ \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.CancelBooking(context.Background(), 5, 31))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingRejectsNonOwner(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedBooking(mock, 31, 5, 1, 2, "active")
	mock.ExpectRollback()

	err := svc.CancelBooking(context.Background(), 99, 31)
	assert.ErrorIs(t, err, repository.ErrNotBookingOwner)
	// Neither the status flip nor the release may have run.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingTwiceCreditsPoolOnce(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	expectLockedBooking(mock, 31, 5, 1, 2, "cancelled")
	mock.ExpectRollback()

	err := svc.CancelBooking(context.Background(), 5, 31)
	assert.ErrorIs(t, err, repository.ErrAlreadyCancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingUnknownID(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "event_id", "num_tickets", "total_cents",
			"payment_method", "status", "booking_date", "updated_at",
		}))
	mock.ExpectRollback()

	err := svc.CancelBooking(context.Background(), 5, 404)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventRepoMock(t *testing.T) (*EventRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventRepo(db), mock
}

func TestReserveTxDecrementsAndReturnsPrice(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT price_cents, status, available_tickets FROM events WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
			AddRow(2500, "active", 10))
	mock.ExpectExec(`UPDATE events SET available_tickets = available_tickets - \? WHERE id = \?`).
		WithArgs(int64(3), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)

	price, err := repo.ReserveTx(context.Background(), tx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveTxInvalidQuantity(t *testing.T) {
	repo, mock := newEventRepoMock(t)
	mock.ExpectBegin()

	tx, err := repo.DB().Begin()
	require.NoError(t, err)

	for _, qty := range []int64{0, -1, -10} {
		_, err := repo.ReserveTx(context.Background(), tx, 1, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "qty=%d", qty)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveTxEventNotFound(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT price_cents, status, available_tickets FROM events`).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)

	_, err = repo.ReserveTx(context.Background(), tx, 42, 1)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestReserveTxEventNotActive(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT price_cents, status, available_tickets FROM events`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
			AddRow(2500, "cancelled", 10))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)

	_, err = repo.ReserveTx(context.Background(), tx, 1, 1)
	assert.ErrorIs(t, err, ErrEventNotActive)
	// No UPDATE may run for an inactive event.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveTxInsufficientTickets(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT price_cents, status, available_tickets FROM events`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
			AddRow(2500, "active", 2))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)

	_, err = repo.ReserveTx(context.Background(), tx, 1, 5)
	assert.ErrorIs(t, err, ErrInsufficientTickets)
	// The counter must be untouched when the pool is too small.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseTxIncrementsPool(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events SET available_tickets = available_tickets \+ \? WHERE id = \?`).
		WithArgs(int64(4), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)

	require.NoError(t, repo.ReleaseTx(context.Background(), tx, 7, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseTxUnknownEvent(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE events SET available_tickets = available_tickets \+ \?`).
		WithArgs(int64(1), uint64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := repo.DB().Begin()
	require.NoError(t, err)

	err = repo.ReleaseTx(context.Background(), tx, 999, 1)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestListUpcomingFiltersByDateStatusAndStock(t *testing.T) {
	repo, mock := newEventRepoMock(t)

	mock.ExpectQuery(`WHERE e\.date >= CURDATE\(\) AND e\.status = 'active' AND e\.available_tickets > 0`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "date", "venue", "price_cents", "available_tickets", "status", "name",
		}))

	events, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

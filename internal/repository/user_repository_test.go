package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-booking/internal/model"
)

func newUserRepoMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

func TestCreateNormalizesEmailAndReportsDuplicates(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("Error 1062: Duplicate entry 'jo@example.com' for key 'users.email'"))

	u := model.User{FirstName: "Jo", LastName: "Smith", Email: "  Jo@Example.COM ", Role: model.RoleCustomer}
	_, err := repo.Create(context.Background(), &u, "pw", 4)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, "jo@example.com", u.Email)
}

func TestDeleteRefusedWhileActiveBookingsExist(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE user_id=\? AND status=\?`).
		WithArgs(uint64(5), model.BookingActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, ErrHasActiveBookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRemovesUserAndLeftovers(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WithArgs(uint64(5), model.BookingActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM bookings WHERE user_id=\? AND status=\?`).
		WithArgs(uint64(5), model.BookingCancelled).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE user_id=\?`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id=\?`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnknownUser(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WithArgs(uint64(404), model.BookingActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM bookings`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM refresh_tokens`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM users`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

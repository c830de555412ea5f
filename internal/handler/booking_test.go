package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-booking/internal/repository"
	"event-booking/internal/service"
)

func newBookingHandlerMock(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewBookingService(repository.NewEventRepo(db), repository.NewBookingRepo(db))
	return NewBookingHandler(svc), mock
}

func TestBookingCreateStatusMapping(t *testing.T) {
	tests := []struct {
		description  string
		bodyinput    string
		setup        func(mock sqlmock.Sqlmock)
		expectedCode int
	}{
		{
			description:  "zero tickets is a client error",
			bodyinput:    `{"event_id":1,"num_tickets":0,"payment_method":"card"}`,
			setup:        func(sqlmock.Sqlmock) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			description:  "missing event id is a client error",
			bodyinput:    `{"num_tickets":2}`,
			setup:        func(sqlmock.Sqlmock) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			description: "unknown event maps to 404",
			bodyinput:   `{"event_id":77,"num_tickets":2,"payment_method":"card"}`,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FOR UPDATE`).
					WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}))
				mock.ExpectRollback()
			},
			expectedCode: http.StatusNotFound,
		},
		{
			description: "cancelled event maps to 409",
			bodyinput:   `{"event_id":1,"num_tickets":2,"payment_method":"card"}`,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FOR UPDATE`).
					WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
						AddRow(2500, "cancelled", 5))
				mock.ExpectRollback()
			},
			expectedCode: http.StatusConflict,
		},
		{
			description: "sold out maps to 409",
			bodyinput:   `{"event_id":1,"num_tickets":3,"payment_method":"card"}`,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FOR UPDATE`).
					WillReturnRows(sqlmock.NewRows([]string{"price_cents", "status", "available_tickets"}).
						AddRow(2500, "active", 1))
				mock.ExpectRollback()
			},
			expectedCode: http.StatusConflict,
		},
	}

	e := echo.New()
	for _, test := range tests {
		h, mock := newBookingHandlerMock(t)
		test.setup(mock)

		req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(test.bodyinput))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("user_id", uint64(5))

		require.NoError(t, h.Create(c))
		assert.Equalf(t, test.expectedCode, rec.Code, test.description)
		assert.NoError(t, mock.ExpectationsWereMet(), test.description)
	}
}

func TestBookingCancelStatusMapping(t *testing.T) {
	booked := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lockedRow := func(userID uint64, status string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "user_id", "event_id", "num_tickets", "total_cents",
			"payment_method", "status", "booking_date", "updated_at",
		}).AddRow(31, userID, 1, 2, 5000, "card", status, booked, booked)
	}

	tests := []struct {
		description  string
		bookingID    string
		setup        func(mock sqlmock.Sqlmock)
		expectedCode int
	}{
		{
			description:  "non-numeric id is a client error",
			bookingID:    "abc",
			setup:        func(sqlmock.Sqlmock) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			description: "someone else's booking maps to 403",
			bookingID:   "31",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(lockedRow(99, "active"))
				mock.ExpectRollback()
			},
			expectedCode: http.StatusForbidden,
		},
		{
			description: "second cancel maps to 409",
			bookingID:   "31",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(lockedRow(5, "cancelled"))
				mock.ExpectRollback()
			},
			expectedCode: http.StatusConflict,
		},
	}

	e := echo.New()
	for _, test := range tests {
		h, mock := newBookingHandlerMock(t)
		test.setup(mock)

		req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/"+test.bookingID, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(test.bookingID)
		c.Set("user_id", uint64(5))

		require.NoError(t, h.Cancel(c))
		assert.Equalf(t, test.expectedCode, rec.Code, test.description)
		assert.NoError(t, mock.ExpectationsWereMet(), test.description)
	}
}

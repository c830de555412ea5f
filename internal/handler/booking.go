package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"event-booking/internal/model"
	"event-booking/internal/repository"
	"event-booking/internal/service"
)

// BookingHandler exposes booking creation, cancellation and listing
// for authenticated customers. All inventory arithmetic lives in the
// service; the handler only translates errors to HTTP statuses.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(s *service.BookingService) *BookingHandler {
	if s == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: s}
}

type createBookingReq struct {
	EventID       uint64 `json:"event_id"`
	NumTickets    int64  `json:"num_tickets"`
	PaymentMethod string `json:"payment_method"`
}

type bookingResp struct {
	ID            uint64    `json:"id"`
	EventID       uint64    `json:"event_id"`
	NumTickets    int64     `json:"num_tickets"`
	TotalCents    int64     `json:"total_cents"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	BookingDate   time.Time `json:"booking_date"`
}

func bookingToResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:            b.ID,
		EventID:       b.EventID,
		NumTickets:    b.NumTickets,
		TotalCents:    b.TotalCents,
		PaymentMethod: b.PaymentMethod,
		Status:        b.Status,
		BookingDate:   b.BookingDate,
	}
}

// Create books tickets for the authenticated user.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Bookings.CreateBooking(ctx, uid, req.EventID, req.NumTickets, req.PaymentMethod)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, bookingToResp(b))
}

// Cancel cancels one of the authenticated user's bookings and returns
// its tickets to the event's pool.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Bookings.CancelBooking(ctx, uid, id); err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled"})
}

// List returns the authenticated user's active bookings with event
// details, newest first.
func (h *BookingHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.ListBookingsForUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// bookingError maps service and repository errors onto HTTP statuses.
// Anything unrecognized is a 500 without leaking the raw error.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "num_tickets must be at least 1"})
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrEventNotActive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is not open for booking"})
	case errors.Is(err, repository.ErrInsufficientTickets):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough tickets available"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrNotBookingOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case errors.Is(err, repository.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
	case errors.Is(err, service.ErrTxConflict):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "high demand, please retry"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
}

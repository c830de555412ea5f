package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"event-booking/internal/model"
	"event-booking/internal/repository"
)

// AdminHandler bundles repositories for the management endpoints. All
// routes sit behind RequireRole("ADMIN").
type AdminHandler struct {
	Events   *repository.EventRepo
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
	Contacts *repository.ContactRepo
}

func NewAdminHandler(e *repository.EventRepo, b *repository.BookingRepo, u *repository.UserRepo, c *repository.ContactRepo) *AdminHandler {
	if e == nil || b == nil || u == nil || c == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Events: e, Bookings: b, Users: u, Contacts: c}
}

// ----- events -----

type eventReq struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Date             string `json:"date"` // YYYY-MM-DD
	Venue            string `json:"venue"`
	PriceCents       int64  `json:"price_cents"`
	AvailableTickets int64  `json:"available_tickets"`
	ArtistID         uint64 `json:"artist_id"`
}

func (req *eventReq) toEvent() (*model.Event, string) {
	req.Name = strings.TrimSpace(req.Name)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.Name == "" || req.Venue == "" || req.Date == "" {
		return nil, "name/date/venue required"
	}
	if req.PriceCents < 0 {
		return nil, "price_cents must not be negative"
	}
	if req.AvailableTickets < 0 {
		return nil, "available_tickets must not be negative"
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, "date must be YYYY-MM-DD"
	}
	return &model.Event{
		Name:             req.Name,
		Description:      strings.TrimSpace(req.Description),
		Date:             date,
		Venue:            req.Venue,
		PriceCents:       req.PriceCents,
		AvailableTickets: req.AvailableTickets,
		ArtistID:         req.ArtistID,
	}, ""
}

// CreateEvent adds a new active event with a full ticket pool.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ev, msg := req.toEvent()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Create(ctx, ev); err != nil {
		// 1452 = foreign key failure on artist_id
		if strings.Contains(strings.ToLower(err.Error()), "1452") {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown artist_id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": ev.ID, "message": "event created"})
}

// UpdateEvent modifies an event's descriptive fields, price and pool
// size. Status changes go through CancelEvent.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ev, msg := req.toEvent()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ev.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Update(ctx, ev); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event updated"})
}

// CancelEvent soft deletes an event. Existing bookings are untouched;
// the event simply stops accepting new ones.
func (h *AdminHandler) CancelEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Cancel(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrEventNotActive):
			return c.JSON(http.StatusConflict, echo.Map{"error": "event already cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event cancelled"})
}

// ListArtists returns the artists available for the event form.
func (h *AdminHandler) ListArtists(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	artists, err := h.Events.ListArtists(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(artists))
	for _, a := range artists {
		out = append(out, echo.Map{"id": a.ID, "name": a.Name, "description": a.Description})
	}
	return c.JSON(http.StatusOK, echo.Map{"artists": out})
}

// ----- users -----

// ListUsers returns all customer accounts.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListCustomers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userToPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// DeleteUser removes a customer account. Users holding active
// bookings cannot be removed; their cancelled bookings and sessions
// are cleaned up along with the row.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrHasActiveBookings):
			return c.JSON(http.StatusConflict, echo.Map{"error": "user still has active bookings"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// ----- bookings -----

// ListBookings returns every booking joined with user and event, for
// the admin dashboard.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// ----- contact messages -----

type contactMsgResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ListContactMessages returns contact submissions, newest first.
func (h *AdminHandler) ListContactMessages(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Contacts.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]contactMsgResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, contactMsgResp{
			ID: m.ID, Name: m.Name, Email: m.Email,
			Message: m.Message, Status: m.Status, SubmittedAt: m.SubmittedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": out})
}

// MarkContactRead flags a message as handled.
func (h *AdminHandler) MarkContactRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Contacts.MarkRead(ctx, id); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "marked read"})
}

// DeleteContactMessage removes a message permanently.
func (h *AdminHandler) DeleteContactMessage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Contacts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

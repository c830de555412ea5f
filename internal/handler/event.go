package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"event-booking/internal/repository"
)

type eventResp struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Venue            string    `json:"venue"`
	PriceCents       int64     `json:"price_cents"`
	AvailableTickets int64     `json:"available_tickets"`
	ArtistID         uint64    `json:"artist_id"`
	Status           string    `json:"status"`
}

// EventHandler serves the public event catalogue.
type EventHandler struct {
	Events *repository.EventRepo
}

func NewEventHandler(e *repository.EventRepo) *EventHandler {
	if e == nil {
		panic("nil repository passed to NewEventHandler")
	}
	return &EventHandler{Events: e}
}

// List returns events joined with their artist. With ?upcoming=true
// only future active events that still have tickets are returned,
// which is what the booking page shows.
func (h *EventHandler) List(c echo.Context) error {
	upcoming := c.QueryParam("upcoming") == "true" || c.QueryParam("upcoming") == "1"

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.List(ctx, upcoming)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Get returns a single event by id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, eventResp{
		ID:               ev.ID,
		Name:             ev.Name,
		Description:      ev.Description,
		Date:             ev.Date,
		Venue:            ev.Venue,
		PriceCents:       ev.PriceCents,
		AvailableTickets: ev.AvailableTickets,
		ArtistID:         ev.ArtistID,
		Status:           ev.Status,
	})
}

// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and handlers to distinguish between failure scenarios
// with errors.Is instead of string matching, and to map each one to a
// distinct HTTP status and user-facing message.
package repository

import "errors"

// ErrEventNotFound indicates that no event row exists for the given id.
var ErrEventNotFound = errors.New("event not found")

// ErrEventNotActive is returned when a reservation targets an event
// whose status is not 'active' (cancelled events keep their rows but
// accept no new bookings).
var ErrEventNotActive = errors.New("event is not active")

// ErrInsufficientTickets is returned when an event has fewer tickets
// remaining than the requested quantity. The ledger check happens
// under a row lock, so this is authoritative at commit time.
var ErrInsufficientTickets = errors.New("not enough tickets available")

// ErrInvalidQuantity is returned when a reservation or release is
// attempted with a quantity below one.
var ErrInvalidQuantity = errors.New("ticket quantity must be at least 1")

// ErrBookingNotFound indicates that no booking row exists for the given id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrNotBookingOwner is returned when a caller attempts to cancel a
// booking that belongs to a different user. Handlers should translate
// this into an HTTP 403 response.
var ErrNotBookingOwner = errors.New("booking belongs to another user")

// ErrAlreadyCancelled is returned when cancelling a booking whose
// status is not 'active'. Without this guard a double cancel would
// credit the ticket pool twice.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrEmailExists is returned when registering with an email address
// that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrHasActiveBookings is returned when deleting a user who still has
// active bookings; those must be cancelled first so the tickets return
// to the pool.
var ErrHasActiveBookings = errors.New("user has active bookings")

// ErrContactNotFound indicates that no contact message exists for the
// given id.
var ErrContactNotFound = errors.New("contact message not found")

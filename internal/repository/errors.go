// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNoSpotAvailable is a normal "lot is full" outcome that
// handlers report to the user, while ErrLotOccupied signals that a
// delete cannot proceed because the deletion-safety invariant would
// be violated.
package repository

import "errors"

// ErrNoSpotAvailable is returned by a claim attempt when no spot in
// the lot has status Available.  This is an expected outcome, not a
// failure: handlers should translate it into "try again later".
var ErrNoSpotAvailable = errors.New("no spot available")

// ErrAlreadyClosed is returned when closing a reservation whose
// out_time is already set.  Closed reservations are immutable, so
// the stored cost is never altered by a repeated close.
var ErrAlreadyClosed = errors.New("reservation already closed")

// ErrInvalidTimestamp is returned when a release timestamp precedes
// the reservation's in_time.  Clock skew must never silently produce
// a negative cost.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// ErrActiveReservation is returned when a user who already holds an
// open reservation attempts to book a second spot.
var ErrActiveReservation = errors.New("user already has an active reservation")

// ErrSpotNotOccupied is returned when releasing a spot that is
// already Available.  The state is unchanged; the caller made a
// logic error that must be surfaced rather than swallowed.
var ErrSpotNotOccupied = errors.New("spot is not occupied")

// ErrSpotOccupied is returned when deleting a spot with status
// Occupied.  Handlers should translate this into an HTTP 409.
var ErrSpotOccupied = errors.New("spot is occupied")

// ErrLotOccupied is returned when deleting a lot while any of its
// spots is Occupied.  The lot and all its spots are left unchanged.
var ErrLotOccupied = errors.New("lot has occupied spots")

// Not-found sentinels, one per entity.  Handlers translate these
// into HTTP 404 responses.
var (
    ErrLotNotFound         = errors.New("parking lot not found")
    ErrSpotNotFound        = errors.New("parking spot not found")
    ErrReservationNotFound = errors.New("reservation not found")
    ErrUserNotFound        = errors.New("user not found")
)

// ErrUsernameExists is returned when registration collides with an
// existing username or email.
var ErrUsernameExists = errors.New("username already exists")

package model

import "time"

// Reservation records one user occupying one spot from claim to
// release.  While open, OutTime and Cost are null and the referenced
// spot is Occupied.  Closing a reservation stamps OutTime, computes
// the cost from the lot's hourly price, and frees the spot; a closed
// reservation is immutable.
//
// Fields:
//  ID      – primary key identifier.
//  UserID  – user who made the booking.
//  SpotID  – spot being occupied.
//  InTime  – when the spot was claimed.
//  OutTime – when the spot was released (nil while open).
//  Cost    – total charge computed at release (nil while open).
type Reservation struct {
    ID      uint64     // reservations.id
    UserID  uint64     // reservations.user_id
    SpotID  uint64     // reservations.spot_id
    InTime  time.Time  // reservations.in_time
    OutTime *time.Time // reservations.out_time (nullable)
    Cost    *float64   // reservations.cost (nullable)
}

// Open reports whether the reservation has not been closed yet.
func (r Reservation) Open() bool { return r.OutTime == nil }

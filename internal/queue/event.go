// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationClosedEvent is published when a reservation is closed and its
// cost computed.  It contains enough information for downstream consumers
// to log or bill without querying the primary database.
type ReservationClosedEvent struct {
    ReservationID uint64  `json:"reservation_id"`
    UserID        uint64  `json:"user_id"`
    SpotID        uint64  `json:"spot_id"`
    LotID         uint64  `json:"lot_id"`
    LotName       string  `json:"lot_name"`
    InTime        string  `json:"in_time"`
    OutTime       string  `json:"out_time"`
    Cost          float64 `json:"cost"`
}

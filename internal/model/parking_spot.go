package model

import "time"

// Spot status values stored in parking_spots.status.  A spot is
// Occupied exactly when one open reservation references it; every
// claim and release keeps the two in step inside one transaction.
const (
    SpotAvailable = "Available"
    SpotOccupied  = "Occupied"
)

// ParkingSpot describes one allocatable parking space within a lot.
// Spots belong to exactly one lot for their whole lifetime and are
// created in bulk when the lot is provisioned.  A spot may only be
// deleted while Available.
//
// Fields:
//  ID        – primary key identifier.
//  LotID     – lot to which this spot belongs.
//  Status    – "Available" or "Occupied".
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type ParkingSpot struct {
    ID        uint64    // parking_spots.id
    LotID     uint64    // parking_spots.lot_id
    Status    string    // parking_spots.status
    CreatedAt time.Time // parking_spots.created_at
    UpdatedAt time.Time // parking_spots.updated_at
}

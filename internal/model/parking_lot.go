package model

import "time"

// ParkingLot represents a named parking facility.  A lot owns a pool
// of spots that is provisioned once, when the lot is created: exactly
// MaxSpots rows are inserted into `parking_spots`, all Available.
// Editing a lot changes descriptive fields only; the spot pool is
// never resized in place.  This struct corresponds to a row in the
// `parking_lots` table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable location name.
//  Address   – street address of the facility.
//  Pincode   – postal code.
//  Price     – hourly price, non-negative.
//  MaxSpots  – configured spot capacity.
//  CreatedAt – timestamp when the lot was created.
//  UpdatedAt – timestamp of last update.
type ParkingLot struct {
    ID        uint64    // parking_lots.id
    Name      string    // parking_lots.name
    Address   string    // parking_lots.address
    Pincode   string    // parking_lots.pincode
    Price     float64   // parking_lots.price (per hour)
    MaxSpots  int       // parking_lots.max_spots
    CreatedAt time.Time // parking_lots.created_at
    UpdatedAt time.Time // parking_lots.updated_at
}

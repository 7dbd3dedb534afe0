package handler

// Response DTOs.  Models stay free of json tags; handlers translate
// them into these wire shapes.

import (
    "time"

    "github.com/iliyamo/parking-lot-reservation/internal/model"
    "github.com/iliyamo/parking-lot-reservation/internal/service"
)

type lotPart struct {
    ID       uint64  `json:"id"`
    Name     string  `json:"name"`
    Address  string  `json:"address"`
    Pincode  string  `json:"pincode"`
    Price    float64 `json:"price"`
    MaxSpots int     `json:"max_spots"`
}

type lotWithAvailability struct {
    lotPart
    AvailableSpots int `json:"available_spots"`
}

type spotPart struct {
    ID     uint64 `json:"id"`
    LotID  uint64 `json:"lot_id"`
    Status string `json:"status"`
}

type reservationPart struct {
    ID      uint64     `json:"id"`
    UserID  uint64     `json:"user_id"`
    SpotID  uint64     `json:"spot_id"`
    InTime  time.Time  `json:"in_time"`
    OutTime *time.Time `json:"out_time,omitempty"`
    Cost    *float64   `json:"cost,omitempty"`
}

func toLotPart(l *model.ParkingLot) lotPart {
    return lotPart{ID: l.ID, Name: l.Name, Address: l.Address, Pincode: l.Pincode, Price: l.Price, MaxSpots: l.MaxSpots}
}

func toLotWithAvailability(l service.LotWithAvailability) lotWithAvailability {
    return lotWithAvailability{lotPart: toLotPart(&l.ParkingLot), AvailableSpots: l.AvailableSpots}
}

func toSpotPart(s model.ParkingSpot) spotPart {
    return spotPart{ID: s.ID, LotID: s.LotID, Status: s.Status}
}

func toReservationPart(r *model.Reservation) reservationPart {
    return reservationPart{ID: r.ID, UserID: r.UserID, SpotID: r.SpotID, InTime: r.InTime, OutTime: r.OutTime, Cost: r.Cost}
}

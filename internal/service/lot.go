package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// ErrInvalidLot is returned by CreateLot/EditLot when required fields
// are missing, the price is negative or the capacity is not positive.
var ErrInvalidLot = errors.New("invalid lot fields")

// LotService manages parking lots and their derived spot pools.
// Creating a lot provisions its spots in the same transaction;
// deleting one is guarded so history-bearing occupied spots are
// never destroyed.
type LotService struct {
	db    *sql.DB
	lots  *repository.LotRepo
	spots *repository.SpotRepo
}

// NewLotService constructs a LotService and panics if any dependency
// is nil.
func NewLotService(db *sql.DB, lots *repository.LotRepo, spots *repository.SpotRepo) *LotService {
	if db == nil || lots == nil || spots == nil {
		panic("nil dependency passed to NewLotService")
	}
	return &LotService{db: db, lots: lots, spots: spots}
}

// CreateLot inserts the lot and provisions exactly maxSpots Available
// spots in one transaction.  Partial provisioning is impossible: if
// any spot insert fails the lot row rolls back with it.
func (s *LotService) CreateLot(ctx context.Context, name, address, pincode string, price float64, maxSpots int) (*model.ParkingLot, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	pincode = strings.TrimSpace(pincode)
	if name == "" || address == "" || pincode == "" || price < 0 || maxSpots <= 0 {
		return nil, ErrInvalidLot
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lot := &model.ParkingLot{Name: name, Address: address, Pincode: pincode, Price: price, MaxSpots: maxSpots}
	if err := s.lots.CreateTx(ctx, tx, lot); err != nil {
		return nil, err
	}
	if err := s.spots.ProvisionTx(ctx, tx, lot.ID, maxSpots); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return lot, nil
}

// EditLot updates the descriptive fields of a lot.  Capacity is fixed
// at creation: max_spots and the provisioned spots are not touched.
func (s *LotService) EditLot(ctx context.Context, id uint64, name, address, pincode string, price float64) (*model.ParkingLot, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	pincode = strings.TrimSpace(pincode)
	if name == "" || address == "" || pincode == "" || price < 0 {
		return nil, ErrInvalidLot
	}
	if _, err := s.lots.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.lots.UpdateByID(ctx, id, name, address, pincode, price); err != nil {
		return nil, err
	}
	return s.lots.GetByID(ctx, id)
}

// DeleteLot removes a lot and all its spots atomically.  It fails
// with repository.ErrLotOccupied while any owned spot is Occupied,
// leaving every row unchanged.
func (s *LotService) DeleteLot(ctx context.Context, id uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := s.lots.GetByIDTx(ctx, tx, id); err != nil {
		return err
	}
	occupied, err := s.spots.CountOccupiedByLotTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if occupied > 0 {
		return repository.ErrLotOccupied
	}
	if err := s.spots.DeleteByLotTx(ctx, tx, id); err != nil {
		return err
	}
	if err := s.lots.DeleteTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteSpot removes a single spot, failing with
// repository.ErrSpotOccupied while it is Occupied.
func (s *LotService) DeleteSpot(ctx context.Context, spotID uint64) error {
	return s.spots.Delete(ctx, spotID)
}

// LotWithAvailability pairs a lot with its current number of
// Available spots for listings.
type LotWithAvailability struct {
	model.ParkingLot
	AvailableSpots int
}

// ListLots returns all lots with their Available spot counts.
func (s *LotService) ListLots(ctx context.Context) ([]LotWithAvailability, error) {
	lots, err := s.lots.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.spots.AvailableCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]LotWithAvailability, 0, len(lots))
	for _, l := range lots {
		out = append(out, LotWithAvailability{ParkingLot: l, AvailableSpots: counts[l.ID]})
	}
	return out, nil
}

// GetLot returns a single lot by id.
func (s *LotService) GetLot(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	return s.lots.GetByID(ctx, id)
}

// ListSpots returns all spots of a lot ordered by id.  The lot must
// exist.
func (s *LotService) ListSpots(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	if _, err := s.lots.GetByID(ctx, lotID); err != nil {
		return nil, err
	}
	return s.spots.ListByLot(ctx, lotID)
}

// OccupancySummary aggregates fleet-wide numbers for the admin
// dashboard.
type OccupancySummary struct {
	TotalLots     int `json:"total_lots"`
	TotalSpots    int `json:"total_spots"`
	OccupiedSpots int `json:"occupied_spots"`
}

// Summary returns lot and spot totals together with the number of
// currently Occupied spots.
func (s *LotService) Summary(ctx context.Context) (OccupancySummary, error) {
	lots, err := s.lots.List(ctx)
	if err != nil {
		return OccupancySummary{}, err
	}
	total, err := s.spots.Count(ctx)
	if err != nil {
		return OccupancySummary{}, err
	}
	occupied, err := s.spots.CountByStatus(ctx, model.SpotOccupied)
	if err != nil {
		return OccupancySummary{}, err
	}
	return OccupancySummary{TotalLots: len(lots), TotalSpots: total, OccupiedSpots: occupied}, nil
}

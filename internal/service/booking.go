// Package service holds the reservation engine: the spot allocator,
// the reservation ledger and the lot manager.  Handlers are thin
// adapters over these types; everything that protects an invariant
// lives here, scoped to a single database transaction per operation.
package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// BookingService implements the booking lifecycle: claim a spot and
// open a reservation in one transaction, later close the reservation
// and free the spot in another.  The paired writes either both land
// or both roll back; a closed reservation on an Occupied spot can
// never be observed.
type BookingService struct {
	db           *sql.DB
	lots         *repository.LotRepo
	spots        *repository.SpotRepo
	reservations *repository.ReservationRepo

	// bookLocks serializes booking attempts per user so the
	// "already holds an open reservation?" check and the claim act
	// as one step even when the same user double-submits.  The
	// stripe set is fixed-size, so memory stays flat no matter how
	// many users book; two users sharing a stripe merely serialize.
	bookLocks [bookingStripes]sync.Mutex

	// now is the clock; tests swap it for a fixed one.
	now func() time.Time
}

// bookingStripes is the size of the booking lock set.
const bookingStripes = 64

// NewBookingService constructs a BookingService and panics if any
// dependency is nil.
func NewBookingService(db *sql.DB, lots *repository.LotRepo, spots *repository.SpotRepo, reservations *repository.ReservationRepo) *BookingService {
	if db == nil || lots == nil || spots == nil || reservations == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{
		db:           db,
		lots:         lots,
		spots:        spots,
		reservations: reservations,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the service clock.  Intended for tests.
func (s *BookingService) SetClock(now func() time.Time) { s.now = now }

// lockUser acquires the user's booking lock stripe and returns its
// unlock function.
func (s *BookingService) lockUser(userID uint64) func() {
	mu := &s.bookLocks[userID%bookingStripes]
	mu.Lock()
	return mu.Unlock
}

// Book claims the lowest-numbered Available spot in the lot for the
// user and opens a reservation on it.  It fails with
// repository.ErrLotNotFound for an unknown lot,
// repository.ErrActiveReservation when the user already holds an
// open reservation, and repository.ErrNoSpotAvailable when the lot
// is full.  On success the returned reservation is open, with
// in_time set from the service clock.
func (s *BookingService) Book(ctx context.Context, userID, lotID uint64) (*model.Reservation, error) {
	unlock := s.lockUser(userID)
	defer unlock()

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

	if _, err := s.lots.GetByIDTx(ctx, tx, lotID); err != nil {
		return nil, err
	}
	open, err := s.reservations.HasOpenByUserTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, repository.ErrActiveReservation
	}
	spotID, err := s.spots.ClaimTx(ctx, tx, lotID)
	if err != nil {
		return nil, err
	}
	inTime := s.now()
	resID, err := s.reservations.OpenTx(ctx, tx, userID, spotID, inTime)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &model.Reservation{ID: resID, UserID: userID, SpotID: spotID, InTime: inTime}, nil
}

// Release closes the user's reservation and frees its spot.  The
// close and the spot release commit together: if the spot cannot be
// flipped back to Available the close rolls back too.  It fails with
// repository.ErrReservationNotFound when the reservation does not
// exist or belongs to another user, repository.ErrAlreadyClosed on a
// second release, and repository.ErrInvalidTimestamp when the clock
// would produce a negative duration.  On success it returns the
// closed reservation with out_time and cost populated, plus the lot
// the freed spot belongs to.
func (s *BookingService) Release(ctx context.Context, userID, reservationID uint64) (*model.Reservation, *model.ParkingLot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := s.reservations.GetByIDForUserTx(ctx, tx, reservationID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !res.Open() {
		return nil, nil, repository.ErrAlreadyClosed
	}
	spot, err := s.spots.GetByIDTx(ctx, tx, res.SpotID)
	if err != nil {
		return nil, nil, err
	}
	lot, err := s.lots.GetByIDTx(ctx, tx, spot.LotID)
	if err != nil {
		return nil, nil, err
	}
	outTime := s.now()
	cost, err := ReservationCost(res.InTime, outTime, lot.Price)
	if err != nil {
		return nil, nil, err
	}
	if err := s.reservations.CloseTx(ctx, tx, res.ID, outTime, cost); err != nil {
		return nil, nil, err
	}
	if err := s.spots.FreeTx(ctx, tx, res.SpotID); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	committed = true
	res.OutTime = &outTime
	res.Cost = &cost
	return res, lot, nil
}

// Active returns the user's open reservation, or nil when the user
// holds no spot.
func (s *BookingService) Active(ctx context.Context, userID uint64) (*model.Reservation, error) {
	res, err := s.reservations.ActiveByUser(ctx, userID)
	if err == repository.ErrReservationNotFound {
		return nil, nil
	}
	return res, err
}

// History returns all of the user's reservations, newest first, with
// the lot each spot belongs to.
func (s *BookingService) History(ctx context.Context, userID uint64) ([]repository.HistoryItem, error) {
	return s.reservations.HistoryByUser(ctx, userID)
}

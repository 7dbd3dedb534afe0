package repository // repository defines data access for parking spots

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel comparisons

	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// SpotRepo provides methods to work with parking spots in the
// database.  The claim and free operations are the storage half of
// the spot allocator: both are compare-and-swap updates on the
// status column so that two transactions can never flip the same
// spot at the same time, whichever backend is underneath.
type SpotRepo struct {
	db *sql.DB
}

// NewSpotRepo constructs a SpotRepo with the given DB handle.
func NewSpotRepo(db *sql.DB) *SpotRepo {
	return &SpotRepo{db: db}
}

// DB exposes the underlying handle for transaction scoping.
func (r *SpotRepo) DB() *sql.DB { return r.db }

// ProvisionTx bulk-inserts n Available spots for a lot inside an
// existing transaction.  It is called exactly once per lot, right
// after the lot row itself is inserted; either all n spots are
// created or the whole transaction rolls back.
func (r *SpotRepo) ProvisionTx(ctx context.Context, tx *sql.Tx, lotID uint64, n int) error {
	if n <= 0 {
		return nil
	}
	query := `INSERT INTO parking_spots (lot_id, status) VALUES `
	args := make([]interface{}, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, lotID, model.SpotAvailable)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListByLot retrieves all spots of a lot ordered by id.
func (r *SpotRepo) ListByLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	const q = `SELECT id, lot_id, status, created_at, updated_at
	           FROM parking_spots
	           WHERE lot_id = ?
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ParkingSpot
	for rows.Next() {
		var s model.ParkingSpot
		if err := rows.Scan(&s.ID, &s.LotID, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a spot by its id.
func (r *SpotRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingSpot, error) {
	const q = `SELECT id, lot_id, status, created_at, updated_at
	           FROM parking_spots WHERE id = ?`
	var s model.ParkingSpot
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.LotID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByIDTx is GetByID scoped to an existing transaction.
func (r *SpotRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ParkingSpot, error) {
	const q = `SELECT id, lot_id, status, created_at, updated_at
	           FROM parking_spots WHERE id = ?`
	var s model.ParkingSpot
	err := tx.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.LotID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// claimTx is the transaction surface ClaimTx needs.  *sql.Tx
// implements it; tests substitute contended variants.
type claimTx interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ClaimTx selects the lowest-numbered Available spot in the lot and
// atomically flips it to Occupied, returning its id.  The flip is a
// conditional update on the status column: when a concurrent
// transaction grabbed the same spot first, zero rows are affected
// and the loop retries with the next candidate.  The pick carries a
// cursor excluding every id already tried, so a lost spot that the
// transaction's snapshot still shows as Available (MySQL's
// REPEATABLE READ keeps it visible after the winner commits) is
// never re-picked and the loop always terminates.
// ErrNoSpotAvailable is returned once no untried candidate is left.
func (r *SpotRepo) ClaimTx(ctx context.Context, tx claimTx, lotID uint64) (uint64, error) {
	const pick = `SELECT id FROM parking_spots
	              WHERE lot_id = ? AND status = ? AND id > ?
	              ORDER BY id LIMIT 1`
	const flip = `UPDATE parking_spots
	              SET status = ?, updated_at = CURRENT_TIMESTAMP
	              WHERE id = ? AND status = ?`
	var tried uint64
	for {
		var spotID uint64
		err := tx.QueryRowContext(ctx, pick, lotID, model.SpotAvailable, tried).Scan(&spotID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrNoSpotAvailable
			}
			return 0, err
		}
		res, err := tx.ExecContext(ctx, flip, model.SpotOccupied, spotID, model.SpotAvailable)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n == 1 {
			return spotID, nil
		}
		// lost the race for this spot; advance the cursor past it
		tried = spotID
	}
}

// FreeTx flips a spot back to Available inside an existing
// transaction.  Releasing an Available spot is reported as
// ErrSpotNotOccupied so the caller can roll back the paired
// reservation close instead of ending up with a closed reservation
// on an Occupied spot.
func (r *SpotRepo) FreeTx(ctx context.Context, tx *sql.Tx, spotID uint64) error {
	const q = `UPDATE parking_spots
	           SET status = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.SpotAvailable, spotID, model.SpotOccupied)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM parking_spots WHERE id = ?`, spotID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSpotNotFound
		}
		if err != nil {
			return err
		}
		return ErrSpotNotOccupied
	}
	return nil
}

// Delete removes a spot guarded by its status: the delete only
// matches Available rows, so an Occupied spot is never destroyed
// under an open reservation.
func (r *SpotRepo) Delete(ctx context.Context, spotID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM parking_spots WHERE id = ? AND status = ?`, spotID, model.SpotAvailable)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var status string
		err := r.db.QueryRowContext(ctx, `SELECT status FROM parking_spots WHERE id = ?`, spotID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSpotNotFound
		}
		if err != nil {
			return err
		}
		return ErrSpotOccupied
	}
	return nil
}

// DeleteByLotTx removes all spots of a lot inside an existing
// transaction.  The service layer has already verified that none of
// them is Occupied.
func (r *SpotRepo) DeleteByLotTx(ctx context.Context, tx *sql.Tx, lotID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE lot_id = ?`, lotID)
	return err
}

// CountOccupiedByLotTx returns how many spots of the lot are
// Occupied, read inside the caller's transaction.  DeleteLot uses it
// as its safety check.
func (r *SpotRepo) CountOccupiedByLotTx(ctx context.Context, tx *sql.Tx, lotID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parking_spots WHERE lot_id = ? AND status = ?`,
		lotID, model.SpotOccupied).Scan(&n)
	return n, err
}

// CountByStatus returns the total number of spots with the given
// status across all lots.  The admin summary endpoint uses it.
func (r *SpotRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parking_spots WHERE status = ?`, status).Scan(&n)
	return n, err
}

// Count returns the total number of spots across all lots.
func (r *SpotRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_spots`).Scan(&n)
	return n, err
}

// AvailableCounts returns the number of Available spots per lot.
// Lots with no Available spot are absent from the map.
func (r *SpotRepo) AvailableCounts(ctx context.Context) (map[uint64]int, error) {
	const q = `SELECT lot_id, COUNT(*) FROM parking_spots
	           WHERE status = ? GROUP BY lot_id`
	rows, err := r.db.QueryContext(ctx, q, model.SpotAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uint64]int)
	for rows.Next() {
		var lotID uint64
		var n int
		if err := rows.Scan(&lotID, &n); err != nil {
			return nil, err
		}
		counts[lotID] = n
	}
	return counts, rows.Err()
}

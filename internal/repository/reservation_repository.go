package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations.  A
// reservation links one user to one spot; while open its out_time
// and cost are NULL.  All timestamp fields are stored in UTC.  The
// write operations are Tx-scoped because a reservation row never
// changes alone: opening pairs with a spot claim and closing pairs
// with a spot release inside the same transaction.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// OpenTx inserts a new open reservation within the scope of an
// existing transaction and returns its generated id.
func (r *ReservationRepo) OpenTx(ctx context.Context, tx *sql.Tx, userID, spotID uint64, inTime time.Time) (uint64, error) {
	const q = `INSERT INTO reservations (user_id, spot_id, in_time) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, userID, spotID, inTime.UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// HasOpenByUserTx reports whether the user currently holds an open
// reservation, read inside the caller's transaction.  Booking checks
// this before claiming a spot so a double submit cannot grant two
// spots to one user.
func (r *ReservationRepo) HasOpenByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (bool, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM reservations WHERE user_id = ? AND out_time IS NULL LIMIT 1`,
		userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ActiveByUser returns the user's open reservation, or
// ErrReservationNotFound when the user holds none.
func (r *ReservationRepo) ActiveByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, spot_id, in_time, out_time, cost
	           FROM reservations WHERE user_id = ? AND out_time IS NULL LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, userID))
}

// GetByIDForUserTx loads a reservation by id within a transaction,
// enforcing that it belongs to the given user.  A reservation owned
// by someone else is indistinguishable from a missing one.
func (r *ReservationRepo) GetByIDForUserTx(ctx context.Context, tx *sql.Tx, id, userID uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, spot_id, in_time, out_time, cost
	           FROM reservations WHERE id = ? AND user_id = ?`
	return r.scanOne(tx.QueryRowContext(ctx, q, id, userID))
}

// GetByID loads a reservation by id regardless of owner.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, spot_id, in_time, out_time, cost
	           FROM reservations WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// CloseTx stamps out_time and cost on an open reservation.  The
// update is conditional on out_time still being NULL: a second close
// affects zero rows and is reported as ErrAlreadyClosed without
// touching the stored cost.
func (r *ReservationRepo) CloseTx(ctx context.Context, tx *sql.Tx, id uint64, outTime time.Time, cost float64) error {
	const q = `UPDATE reservations SET out_time = ?, cost = ? WHERE id = ? AND out_time IS NULL`
	res, err := tx.ExecContext(ctx, q, outTime.UTC(), cost, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var dummy uint64
		err := tx.QueryRowContext(ctx, `SELECT id FROM reservations WHERE id = ?`, id).Scan(&dummy)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReservationNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyClosed
	}
	return nil
}

// HistoryItem is one row of a user's reservation history, joined
// with the lot the spot belongs to for display.  Open reservations
// carry null out_time and cost.
type HistoryItem struct {
	ID      uint64     `json:"id"`
	SpotID  uint64     `json:"spot_id"`
	LotID   uint64     `json:"lot_id"`
	LotName string     `json:"lot_name"`
	InTime  time.Time  `json:"in_time"`
	OutTime *time.Time `json:"out_time,omitempty"`
	Cost    *float64   `json:"cost,omitempty"`
}

// HistoryByUser returns all reservations for a user, open or closed,
// ordered by in_time descending (newest first).  When no
// reservations exist, an empty slice is returned.  The joins are
// LEFT so entries survive spot and lot deletion; the lot columns
// come back empty in that case.
func (r *ReservationRepo) HistoryByUser(ctx context.Context, userID uint64) ([]HistoryItem, error) {
	const q = `SELECT r.id, r.spot_id, l.id, l.name, r.in_time, r.out_time, r.cost
	           FROM reservations r
	           LEFT JOIN parking_spots s ON s.id = r.spot_id
	           LEFT JOIN parking_lots l ON l.id = s.lot_id
	           WHERE r.user_id = ?
	           ORDER BY r.in_time DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]HistoryItem, 0)
	for rows.Next() {
		var it HistoryItem
		var lotID sql.NullInt64
		var lotName sql.NullString
		var outTime sql.NullTime
		var cost sql.NullFloat64
		if err := rows.Scan(&it.ID, &it.SpotID, &lotID, &lotName, &it.InTime, &outTime, &cost); err != nil {
			return nil, err
		}
		if lotID.Valid {
			it.LotID = uint64(lotID.Int64)
		}
		it.LotName = lotName.String
		if outTime.Valid {
			t := outTime.Time.UTC()
			it.OutTime = &t
		}
		if cost.Valid {
			c := cost.Float64
			it.Cost = &c
		}
		it.InTime = it.InTime.UTC()
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CountOpenBySpot returns the number of open reservations that
// reference a spot.  The invariant is that this is 1 exactly when
// the spot is Occupied and 0 otherwise.
func (r *ReservationRepo) CountOpenBySpot(ctx context.Context, spotID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE spot_id = ? AND out_time IS NULL`,
		spotID).Scan(&n)
	return n, err
}

// scanOne scans a single reservation row, mapping sql.ErrNoRows to
// the repository's not-found sentinel.
func (r *ReservationRepo) scanOne(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	var outTime sql.NullTime
	var cost sql.NullFloat64
	err := row.Scan(&res.ID, &res.UserID, &res.SpotID, &res.InTime, &outTime, &cost)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	res.InTime = res.InTime.UTC()
	if outTime.Valid {
		t := outTime.Time.UTC()
		res.OutTime = &t
	}
	if cost.Valid {
		c := cost.Float64
		res.Cost = &c
	}
	return &res, nil
}

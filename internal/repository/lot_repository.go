package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel comparisons

	"github.com/iliyamo/parking-lot-reservation/internal/model"
)

// LotRepo provides methods to create and retrieve parking lots.  It
// embeds a database handle to perform queries and commands.  Writes
// that must pair with spot provisioning or removal are exposed as
// Tx variants so the service layer can scope them to one transaction.
type LotRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewLotRepo constructs a LotRepo with the given DB handle.
func NewLotRepo(db *sql.DB) *LotRepo {
	return &LotRepo{db: db}
}

// DB exposes the underlying handle so the service layer can begin
// transactions spanning lots and spots.
func (r *LotRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new lot within the scope of an existing
// transaction and populates the generated ID on the passed struct.
// The caller must commit or roll back; spot provisioning for the lot
// happens in the same transaction.
func (r *LotRepo) CreateTx(ctx context.Context, tx *sql.Tx, lot *model.ParkingLot) error {
	const q = `INSERT INTO parking_lots (name, address, pincode, price, max_spots)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, lot.Name, lot.Address, lot.Pincode, lot.Price, lot.MaxSpots)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	lot.ID = uint64(id)
	return nil
}

// GetByID retrieves a lot by its ID.  It returns ErrLotNotFound when
// no row is found.
func (r *LotRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	const q = `SELECT id, name, address, pincode, price, max_spots, created_at, updated_at
	           FROM parking_lots WHERE id = ?`
	var l model.ParkingLot
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&l.ID, &l.Name, &l.Address, &l.Pincode, &l.Price, &l.MaxSpots, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLotNotFound
		}
		return nil, err
	}
	return &l, nil
}

// GetByIDTx is GetByID scoped to an existing transaction.  The close
// path uses it to read the hourly price with the same snapshot that
// updates the reservation.
func (r *LotRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ParkingLot, error) {
	const q = `SELECT id, name, address, pincode, price, max_spots, created_at, updated_at
	           FROM parking_lots WHERE id = ?`
	var l model.ParkingLot
	err := tx.QueryRowContext(ctx, q, id).
		Scan(&l.ID, &l.Name, &l.Address, &l.Pincode, &l.Price, &l.MaxSpots, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLotNotFound
		}
		return nil, err
	}
	return &l, nil
}

// List returns all lots ordered by id.
func (r *LotRepo) List(ctx context.Context) ([]model.ParkingLot, error) {
	const q = `SELECT id, name, address, pincode, price, max_spots, created_at, updated_at
	           FROM parking_lots ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ParkingLot
	for rows.Next() {
		var l model.ParkingLot
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Pincode, &l.Price, &l.MaxSpots, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateByID mutates the descriptive fields of a lot in place.  It
// never touches max_spots or the provisioned spot pool; resizing a
// lot is not supported.  Callers must have verified the lot exists.
func (r *LotRepo) UpdateByID(ctx context.Context, id uint64, name, address, pincode string, price float64) error {
	const q = `UPDATE parking_lots
	           SET name = ?, address = ?, pincode = ?, price = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, name, address, pincode, price, id)
	return err
}

// DeleteTx removes the lot row within an existing transaction.  The
// service layer deletes the owned spots first in the same transaction.
func (r *LotRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLotNotFound
	}
	return nil
}

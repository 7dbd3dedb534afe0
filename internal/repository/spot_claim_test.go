package repository

import (
    "context"
    "database/sql"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/parking-lot-reservation/internal/database"
    "github.com/iliyamo/parking-lot-reservation/internal/model"
)

// contendedTx wraps a real transaction and steals each picked spot
// right before the conditional flip, mimicking a concurrent claimer
// winning the race: the flip then affects zero rows while the spot
// still looked Available to the pick.
type contendedTx struct {
    tx     *sql.Tx
    steals int
}

func (c *contendedTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
    return c.tx.QueryRowContext(ctx, query, args...)
}

func (c *contendedTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
    if c.steals > 0 && strings.HasPrefix(strings.TrimSpace(query), "UPDATE parking_spots") {
        c.steals--
        if _, err := c.tx.ExecContext(ctx,
            `UPDATE parking_spots SET status = ? WHERE id = ?`, model.SpotOccupied, args[1]); err != nil {
            return nil, err
        }
    }
    return c.tx.ExecContext(ctx, query, args...)
}

func claimFixture(t *testing.T, spots int) (*SpotRepo, *sql.Tx, []model.ParkingSpot) {
    t.Helper()
    db, err := database.OpenSQLite(":memory:")
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })

    ctx := context.Background()
    lots := NewLotRepo(db)
    spotRepo := NewSpotRepo(db)

    setup, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)
    lot := &model.ParkingLot{Name: "Central", Address: "42 Hill Rd", Pincode: "560001", Price: 20, MaxSpots: spots}
    require.NoError(t, lots.CreateTx(ctx, setup, lot))
    require.NoError(t, spotRepo.ProvisionTx(ctx, setup, lot.ID, spots))
    require.NoError(t, setup.Commit())

    all, err := spotRepo.ListByLot(ctx, lot.ID)
    require.NoError(t, err)
    require.Len(t, all, spots)

    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)
    t.Cleanup(func() { _ = tx.Rollback() })
    return spotRepo, tx, all
}

func TestClaimTxRetriesPastLostSpot(t *testing.T) {
    spotRepo, tx, all := claimFixture(t, 2)

    // The first pick is stolen; the loop must move on and claim the
    // next spot instead of re-picking the lost one forever.
    got, err := spotRepo.ClaimTx(context.Background(), &contendedTx{tx: tx, steals: 1}, all[0].LotID)
    require.NoError(t, err)
    assert.Equal(t, all[1].ID, got)
}

func TestClaimTxTerminatesWhenEveryPickIsLost(t *testing.T) {
    spotRepo, tx, all := claimFixture(t, 3)

    _, err := spotRepo.ClaimTx(context.Background(), &contendedTx{tx: tx, steals: 3}, all[0].LotID)
    assert.ErrorIs(t, err, ErrNoSpotAvailable)
}

package service_test

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/parking-lot-reservation/internal/model"
    "github.com/iliyamo/parking-lot-reservation/internal/repository"
    "github.com/iliyamo/parking-lot-reservation/internal/service"
)

func TestCreateLotProvisionsSpots(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()

    lot, err := e.lots.CreateLot(ctx, "Central", "42 Hill Rd", "560001", 15.5, 5)
    require.NoError(t, err)
    assert.NotZero(t, lot.ID)
    assert.Equal(t, 5, lot.MaxSpots)

    spots, err := e.lots.ListSpots(ctx, lot.ID)
    require.NoError(t, err)
    require.Len(t, spots, 5)
    for _, s := range spots {
        assert.Equal(t, model.SpotAvailable, s.Status)
        assert.Equal(t, lot.ID, s.LotID)
    }
}

func TestCreateLotValidation(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()

    cases := []struct {
        name     string
        lotName  string
        price    float64
        maxSpots int
    }{
        {"empty name", "", 10, 5},
        {"negative price", "Central", -1, 5},
        {"zero capacity", "Central", 10, 0},
        {"negative capacity", "Central", 10, -3},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            _, err := e.lots.CreateLot(ctx, tc.lotName, "42 Hill Rd", "560001", tc.price, tc.maxSpots)
            assert.ErrorIs(t, err, service.ErrInvalidLot)
        })
    }
}

func TestEditLotKeepsSpotsAndCapacity(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 10, 4)

    before, err := e.lots.ListSpots(ctx, lot.ID)
    require.NoError(t, err)

    updated, err := e.lots.EditLot(ctx, lot.ID, "Renamed", "9 New Ave", "560002", 12.5)
    require.NoError(t, err)
    assert.Equal(t, "Renamed", updated.Name)
    assert.Equal(t, 12.5, updated.Price)
    assert.Equal(t, lot.MaxSpots, updated.MaxSpots)

    after, err := e.lots.ListSpots(ctx, lot.ID)
    require.NoError(t, err)
    require.Len(t, after, len(before))
    for i := range before {
        assert.Equal(t, before[i].ID, after[i].ID)
        assert.Equal(t, before[i].Status, after[i].Status)
    }
}

func TestEditLotNotFound(t *testing.T) {
    e := newEnv(t)
    _, err := e.lots.EditLot(context.Background(), 404, "X", "Y", "1", 1)
    assert.ErrorIs(t, err, repository.ErrLotNotFound)
}

func TestDeleteLotRemovesSpots(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 10, 3)

    require.NoError(t, e.lots.DeleteLot(ctx, lot.ID))

    _, err := e.lots.GetLot(ctx, lot.ID)
    assert.ErrorIs(t, err, repository.ErrLotNotFound)

    _, err = e.lots.ListSpots(ctx, lot.ID)
    assert.ErrorIs(t, err, repository.ErrLotNotFound)
}

func TestDeleteLotWithOccupiedSpot(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 10, 2)
    alice := e.newUser(t, "alice")

    _, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    err = e.lots.DeleteLot(ctx, lot.ID)
    assert.ErrorIs(t, err, repository.ErrLotOccupied)

    // The lot and all its spots survive the failed delete.
    got, err := e.lots.GetLot(ctx, lot.ID)
    require.NoError(t, err)
    assert.Equal(t, lot.ID, got.ID)
    spots, err := e.lots.ListSpots(ctx, lot.ID)
    require.NoError(t, err)
    assert.Len(t, spots, 2)
}

func TestDeleteSpot(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 10, 2)

    spots, err := e.lots.ListSpots(ctx, lot.ID)
    require.NoError(t, err)

    require.NoError(t, e.lots.DeleteSpot(ctx, spots[1].ID))

    left, err := e.lots.ListSpots(ctx, lot.ID)
    require.NoError(t, err)
    require.Len(t, left, 1)
    assert.Equal(t, spots[0].ID, left[0].ID)
}

func TestDeleteSpotOccupied(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 10, 1)
    alice := e.newUser(t, "alice")

    res, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    err = e.lots.DeleteSpot(ctx, res.SpotID)
    assert.ErrorIs(t, err, repository.ErrSpotOccupied)
}

func TestDeleteSpotNotFound(t *testing.T) {
    e := newEnv(t)
    err := e.lots.DeleteSpot(context.Background(), 404)
    assert.ErrorIs(t, err, repository.ErrSpotNotFound)
}

func TestListLotsReportsAvailability(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    big := e.newLot(t, 10, 3)
    small := e.newLot(t, 20, 1)
    alice := e.newUser(t, "alice")

    _, err := e.bookings.Book(ctx, alice, big.ID)
    require.NoError(t, err)

    lots, err := e.lots.ListLots(ctx)
    require.NoError(t, err)
    require.Len(t, lots, 2)

    byID := map[uint64]service.LotWithAvailability{}
    for _, l := range lots {
        byID[l.ID] = l
    }
    assert.Equal(t, 2, byID[big.ID].AvailableSpots)
    assert.Equal(t, 1, byID[small.ID].AvailableSpots)
}

func TestSummary(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    e.newLot(t, 10, 3)
    lot := e.newLot(t, 20, 2)
    alice := e.newUser(t, "alice")

    _, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    s, err := e.lots.Summary(ctx)
    require.NoError(t, err)
    assert.Equal(t, 2, s.TotalLots)
    assert.Equal(t, 5, s.TotalSpots)
    assert.Equal(t, 1, s.OccupiedSpots)
}

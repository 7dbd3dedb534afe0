package service_test

import (
    "context"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/parking-lot-reservation/internal/model"
    "github.com/iliyamo/parking-lot-reservation/internal/repository"
)

func TestBookAssignsLowestSpot(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 3)
    alice := e.newUser(t, "alice")
    bob := e.newUser(t, "bob")

    spots, err := e.lots.ListSpots(ctx, lot.ID)
    require.NoError(t, err)
    require.Len(t, spots, 3)

    r1, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)
    assert.Equal(t, spots[0].ID, r1.SpotID)
    assert.Nil(t, r1.OutTime)

    r2, err := e.bookings.Book(ctx, bob, lot.ID)
    require.NoError(t, err)
    assert.Equal(t, spots[1].ID, r2.SpotID)
}

func TestBookMarksSpotOccupied(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 2)
    alice := e.newUser(t, "alice")

    res, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    spot, err := e.spots.GetByID(ctx, res.SpotID)
    require.NoError(t, err)
    assert.Equal(t, model.SpotOccupied, spot.Status)
}

func TestBookUnknownLot(t *testing.T) {
    e := newEnv(t)
    alice := e.newUser(t, "alice")

    _, err := e.bookings.Book(context.Background(), alice, 999)
    assert.ErrorIs(t, err, repository.ErrLotNotFound)
}

func TestBookRejectsSecondOpenReservation(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 3)
    alice := e.newUser(t, "alice")

    _, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    _, err = e.bookings.Book(ctx, alice, lot.ID)
    assert.ErrorIs(t, err, repository.ErrActiveReservation)
}

func TestBookExhaustsCapacity(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 2)

    for i := 0; i < 2; i++ {
        uid := e.newUser(t, fmt.Sprintf("user%d", i))
        _, err := e.bookings.Book(ctx, uid, lot.ID)
        require.NoError(t, err)
    }

    late := e.newUser(t, "late")
    _, err := e.bookings.Book(ctx, late, lot.ID)
    assert.ErrorIs(t, err, repository.ErrNoSpotAvailable)
}

func TestReleaseComputesCostAndFreesSpot(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 1)
    alice := e.newUser(t, "alice")

    clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
    e.bookings.SetClock(func() time.Time { return clock })

    res, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    clock = clock.Add(150 * time.Minute)
    closed, gotLot, err := e.bookings.Release(ctx, alice, res.ID)
    require.NoError(t, err)
    require.NotNil(t, closed.Cost)
    assert.InDelta(t, 50.0, *closed.Cost, 1e-9)
    require.NotNil(t, closed.OutTime)
    assert.Equal(t, lot.ID, gotLot.ID)

    spot, err := e.spots.GetByID(ctx, res.SpotID)
    require.NoError(t, err)
    assert.Equal(t, model.SpotAvailable, spot.Status)
}

func TestReleaseZeroDurationCostsNothing(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 35, 1)
    alice := e.newUser(t, "alice")

    clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
    e.bookings.SetClock(func() time.Time { return clock })

    res, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    closed, _, err := e.bookings.Release(ctx, alice, res.ID)
    require.NoError(t, err)
    require.NotNil(t, closed.Cost)
    assert.Equal(t, 0.0, *closed.Cost)
}

func TestReleaseTwice(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 1)
    alice := e.newUser(t, "alice")

    res, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    _, _, err = e.bookings.Release(ctx, alice, res.ID)
    require.NoError(t, err)

    _, _, err = e.bookings.Release(ctx, alice, res.ID)
    assert.ErrorIs(t, err, repository.ErrAlreadyClosed)
}

func TestReleaseForeignReservation(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 2)
    alice := e.newUser(t, "alice")
    mallory := e.newUser(t, "mallory")

    res, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    _, _, err = e.bookings.Release(ctx, mallory, res.ID)
    assert.ErrorIs(t, err, repository.ErrReservationNotFound)

    // The reservation is untouched and the spot still held.
    active, err := e.bookings.Active(ctx, alice)
    require.NoError(t, err)
    require.NotNil(t, active)
    assert.Equal(t, res.ID, active.ID)
}

func TestReleaseClockWentBackwards(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 1)
    alice := e.newUser(t, "alice")

    clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
    e.bookings.SetClock(func() time.Time { return clock })

    res, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    clock = clock.Add(-time.Hour)
    _, _, err = e.bookings.Release(ctx, alice, res.ID)
    assert.ErrorIs(t, err, repository.ErrInvalidTimestamp)

    // Nothing committed: reservation still open, spot still occupied.
    spot, err := e.spots.GetByID(ctx, res.SpotID)
    require.NoError(t, err)
    assert.Equal(t, model.SpotOccupied, spot.Status)

    active, err := e.bookings.Active(ctx, alice)
    require.NoError(t, err)
    require.NotNil(t, active)
}

func TestActiveLifecycle(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 1)
    alice := e.newUser(t, "alice")

    active, err := e.bookings.Active(ctx, alice)
    require.NoError(t, err)
    assert.Nil(t, active)

    res, err := e.bookings.Book(ctx, alice, lot.ID)
    require.NoError(t, err)

    active, err = e.bookings.Active(ctx, alice)
    require.NoError(t, err)
    require.NotNil(t, active)
    assert.Equal(t, res.ID, active.ID)

    _, _, err = e.bookings.Release(ctx, alice, res.ID)
    require.NoError(t, err)

    active, err = e.bookings.Active(ctx, alice)
    require.NoError(t, err)
    assert.Nil(t, active)
}

func TestHistoryNewestFirst(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 10, 1)
    alice := e.newUser(t, "alice")

    clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
    e.bookings.SetClock(func() time.Time { return clock })

    var ids []uint64
    for i := 0; i < 3; i++ {
        res, err := e.bookings.Book(ctx, alice, lot.ID)
        require.NoError(t, err)
        clock = clock.Add(time.Hour)
        _, _, err = e.bookings.Release(ctx, alice, res.ID)
        require.NoError(t, err)
        ids = append(ids, res.ID)
        clock = clock.Add(time.Minute)
    }

    items, err := e.bookings.History(ctx, alice)
    require.NoError(t, err)
    require.Len(t, items, 3)
    assert.Equal(t, ids[2], items[0].ID)
    assert.Equal(t, ids[1], items[1].ID)
    assert.Equal(t, ids[0], items[2].ID)
    assert.Equal(t, lot.Name, items[0].LotName)
    require.NotNil(t, items[0].Cost)
    assert.InDelta(t, 10.0, *items[0].Cost, 1e-9)
}

func TestConcurrentDoubleSubmitSameUser(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 4)
    alice := e.newUser(t, "alice")

    const n = 6
    var wg sync.WaitGroup
    errs := make([]error, n)
    for i := 0; i < n; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = e.bookings.Book(ctx, alice, lot.ID)
        }(i)
    }
    wg.Wait()

    won := 0
    for _, err := range errs {
        if err == nil {
            won++
        } else {
            assert.ErrorIs(t, err, repository.ErrActiveReservation)
        }
    }
    assert.Equal(t, 1, won)

    // Exactly one spot ended up Occupied.
    spots, err := e.lots.ListSpots(ctx, lot.ID)
    require.NoError(t, err)
    occupied := 0
    for _, s := range spots {
        if s.Status == model.SpotOccupied {
            occupied++
        }
    }
    assert.Equal(t, 1, occupied)
}

func TestConcurrentClaimSingleSpot(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    lot := e.newLot(t, 20, 1)

    const n = 8
    users := make([]uint64, n)
    for i := range users {
        users[i] = e.newUser(t, fmt.Sprintf("racer%d", i))
    }

    var wg sync.WaitGroup
    errs := make([]error, n)
    for i := 0; i < n; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = e.bookings.Book(ctx, users[i], lot.ID)
        }(i)
    }
    wg.Wait()

    winners := 0
    for _, err := range errs {
        if err == nil {
            winners++
        } else {
            assert.ErrorIs(t, err, repository.ErrNoSpotAvailable)
        }
    }
    assert.Equal(t, 1, winners)
}

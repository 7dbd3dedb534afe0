package service_test

import (
    "context"
    "database/sql"
    "fmt"
    "testing"

    "github.com/stretchr/testify/require"

    "github.com/iliyamo/parking-lot-reservation/internal/database"
    "github.com/iliyamo/parking-lot-reservation/internal/model"
    "github.com/iliyamo/parking-lot-reservation/internal/repository"
    "github.com/iliyamo/parking-lot-reservation/internal/service"
)

// env bundles the services under test on top of a fresh in-memory
// store.  Each test gets its own database.
type env struct {
    db       *sql.DB
    lots     *service.LotService
    bookings *service.BookingService
    spots    *repository.SpotRepo
    users    *repository.UserRepo
}

func newEnv(t *testing.T) *env {
    t.Helper()
    db, err := database.OpenSQLite(":memory:")
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })

    lotRepo := repository.NewLotRepo(db)
    spotRepo := repository.NewSpotRepo(db)
    resRepo := repository.NewReservationRepo(db)
    return &env{
        db:       db,
        lots:     service.NewLotService(db, lotRepo, spotRepo),
        bookings: service.NewBookingService(db, lotRepo, spotRepo, resRepo),
        spots:    spotRepo,
        users:    repository.NewUserRepo(db),
    }
}

// newUser inserts a registered account and returns its id.  The low
// bcrypt cost keeps the fixtures fast.
func (e *env) newUser(t *testing.T, name string) uint64 {
    t.Helper()
    id, err := e.users.Create(context.Background(), name, name+"@example.com", "secret", model.RoleUser, 4)
    require.NoError(t, err)
    return id
}

// newLot provisions a lot with the given capacity and hourly price.
func (e *env) newLot(t *testing.T, price float64, maxSpots int) *model.ParkingLot {
    t.Helper()
    lot, err := e.lots.CreateLot(context.Background(), fmt.Sprintf("Lot-%d", maxSpots), "1 Main St", "560001", price, maxSpots)
    require.NoError(t, err)
    return lot
}

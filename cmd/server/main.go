package main // entry point for the parking reservation API server

import (
    "context"
    "database/sql"
    "log"
    "time"

    "github.com/joho/godotenv"    // .env loader for local development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/parking-lot-reservation/internal/config"
    "github.com/iliyamo/parking-lot-reservation/internal/database"
    "github.com/iliyamo/parking-lot-reservation/internal/handler"
    "github.com/iliyamo/parking-lot-reservation/internal/model"
    "github.com/iliyamo/parking-lot-reservation/internal/queue"
    "github.com/iliyamo/parking-lot-reservation/internal/repository"
    "github.com/iliyamo/parking-lot-reservation/internal/router"
    "github.com/iliyamo/parking-lot-reservation/internal/service"
)

func main() {
    // .env is optional; real deployments set variables directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := openDB(cfg)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    lots := repository.NewLotRepo(db)
    spots := repository.NewSpotRepo(db)
    reservations := repository.NewReservationRepo(db)

    lotSvc := service.NewLotService(db, lots, spots)
    bookingSvc := service.NewBookingService(db, lots, spots, reservations)

    if err := seedAdmin(cfg, users); err != nil {
        log.Fatalf("seed admin: %v", err)
    }

    // Redis is optional; when unreachable the limiter and cache fail open.
    rdb := config.NewRedisClient()

    // The billing consumer reconnects on its own; a broker that is down at
    // boot must not keep the API from serving.
    go func() {
        if err := queue.StartBillingConsumer(); err != nil {
            log.Printf("billing consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true

    router.RegisterRoutes(e)
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
    router.RegisterPublic(e, handler.NewPublicHandler(lotSvc), rdb)
    router.RegisterBookings(e, handler.NewBookingHandler(bookingSvc), cfg.JWTSecret, rdb)
    router.RegisterAdmin(e, handler.NewAdminHandler(lotSvc, users), cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s driver=%s)", addr, cfg.Env, cfg.DBDriver)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}

// openDB opens the configured backend.  MySQL is the production target;
// SQLite serves embedded and development setups.
func openDB(cfg config.Config) (*sql.DB, error) {
    if cfg.DBDriver == "sqlite" {
        return database.OpenSQLite(cfg.DBPath)
    }
    return database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// seedAdmin creates the initial admin account when credentials are
// configured and no admin exists yet.  Registration never grants the
// admin role, so without the seed there would be no way to manage lots.
func seedAdmin(cfg config.Config, users *repository.UserRepo) error {
    if cfg.AdminUser == "" || cfg.AdminPass == "" {
        return nil
    }
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    n, err := users.CountByRole(ctx, model.RoleAdmin)
    if err != nil {
        return err
    }
    if n > 0 {
        return nil
    }
    email := cfg.AdminUser + "@local"
    if _, err := users.Create(ctx, cfg.AdminUser, email, cfg.AdminPass, model.RoleAdmin, cfg.BcryptCost); err != nil {
        return err
    }
    log.Printf("seeded admin account %q", cfg.AdminUser)
    return nil
}

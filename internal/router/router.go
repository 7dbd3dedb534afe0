package router // router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/parking-lot-reservation/internal/config"
    "github.com/iliyamo/parking-lot-reservation/internal/handler"
    "github.com/iliyamo/parking-lot-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Unauthenticated
// operations live under /v1/auth; the authenticated profile endpoint
// lives under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints.  Lot and
// spot listings are fronted by the Redis response cache when one is
// configured; writes elsewhere tolerate the short staleness window.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client) {
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
    e.GET("/v1/lots", p.ListLots, cache)
    e.GET("/v1/lots/:id", p.GetLot, cache)
    e.GET("/v1/lots/:id/spots", p.ListSpots, cache)
}

// RegisterBookings registers user-scoped reservation endpoints under /v1.
// All routes require a valid JWT; booking and release additionally pass
// through the token-bucket rate limiter so a misbehaving client cannot
// hammer the claim path.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, rdb *redis.Client) {
    limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    g := e.Group(
        "/v1/bookings",
        middleware.JWTAuth(jwtSecret),
    )
    g.POST("", h.Book, limiter)
    g.POST("/:id/release", h.Release, limiter)
    g.GET("/active", h.Active)
    g.GET("/history", h.History)
}

// RegisterAdmin registers admin-scoped endpoints under /v1/admin.  All
// routes require a valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("admin"),
    )
    g.POST("/lots", h.CreateLot)
    g.PUT("/lots/:id", h.EditLot)
    g.DELETE("/lots/:id", h.DeleteLot)
    g.DELETE("/spots/:id", h.DeleteSpot)
    g.GET("/users", h.ListUsers)
    g.GET("/summary", h.Summary)
}

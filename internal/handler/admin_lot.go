package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-lot-reservation/internal/model"
    "github.com/iliyamo/parking-lot-reservation/internal/repository"
    "github.com/iliyamo/parking-lot-reservation/internal/service"
)

// AdminHandler exposes the administrative endpoints: lot and spot
// management plus the user listing and the occupancy summary.  All routes
// it serves are guarded by RequireRole("admin").
type AdminHandler struct {
    Lots  *service.LotService
    Users *repository.UserRepo
}

func NewAdminHandler(lots *service.LotService, users *repository.UserRepo) *AdminHandler {
    return &AdminHandler{Lots: lots, Users: users}
}

type lotReq struct {
    Name     string  `json:"name"`
    Address  string  `json:"address"`
    Pincode  string  `json:"pincode"`
    Price    float64 `json:"price"`
    MaxSpots int     `json:"max_spots"`
}

// CreateLot provisions a lot together with its spots.  The response
// carries the stored lot; its spots are all Available.
func (h *AdminHandler) CreateLot(c echo.Context) error {
    var req lotReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    lot, err := h.Lots.CreateLot(ctx, req.Name, req.Address, req.Pincode, req.Price, req.MaxSpots)
    if err != nil {
        if errors.Is(err, service.ErrInvalidLot) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create lot failed"})
    }
    return c.JSON(http.StatusCreated, toLotPart(lot))
}

// EditLot updates the descriptive fields of a lot.  Capacity is fixed at
// creation time, so max_spots in the body is ignored.
func (h *AdminHandler) EditLot(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }
    var req lotReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    lot, err := h.Lots.EditLot(ctx, id, req.Name, req.Address, req.Pincode, req.Price)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrLotNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        case errors.Is(err, service.ErrInvalidLot):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update lot failed"})
    }
    return c.JSON(http.StatusOK, toLotPart(lot))
}

// DeleteLot removes a lot and all its spots.  A lot with any occupied
// spot cannot be removed.
func (h *AdminHandler) DeleteLot(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Lots.DeleteLot(ctx, id); err != nil {
        switch {
        case errors.Is(err, repository.ErrLotNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        case errors.Is(err, repository.ErrLotOccupied):
            return c.JSON(http.StatusConflict, echo.Map{"error": "lot has occupied spots"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete lot failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// DeleteSpot removes a single spot, shrinking the lot's capacity by one.
// Occupied spots cannot be removed.
func (h *AdminHandler) DeleteSpot(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid spot id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Lots.DeleteSpot(ctx, id); err != nil {
        switch {
        case errors.Is(err, repository.ErrSpotNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "spot not found"})
        case errors.Is(err, repository.ErrSpotOccupied):
            return c.JSON(http.StatusConflict, echo.Map{"error": "spot is occupied"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete spot failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ListUsers returns all registered (non-admin) accounts without their
// password hashes.
func (h *AdminHandler) ListUsers(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    users, err := h.Users.ListByRole(ctx, model.RoleUser)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]userPart, 0, len(users))
    for _, u := range users {
        out = append(out, userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role})
    }
    return c.JSON(http.StatusOK, out)
}

// Summary reports system-wide occupancy counters for the admin dashboard.
func (h *AdminHandler) Summary(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    s, err := h.Lots.Summary(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, s)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    return strconv.ParseUint(c.Param(name), 10, 64)
}

// reqCtx derives a bounded context for a single DB round trip.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

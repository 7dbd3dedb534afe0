package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-lot-reservation/internal/queue"
    "github.com/iliyamo/parking-lot-reservation/internal/repository"
    "github.com/iliyamo/parking-lot-reservation/internal/service"
)

// BookingHandler serves the user-facing reservation endpoints: booking a
// spot in a lot, releasing it, and inspecting the active reservation or
// the full history.
type BookingHandler struct {
    Bookings *service.BookingService
}

func NewBookingHandler(b *service.BookingService) *BookingHandler {
    return &BookingHandler{Bookings: b}
}

type bookReq struct {
    LotID uint64 `json:"lot_id"`
}

// Book claims the lowest-numbered available spot in the requested lot and
// opens a reservation on it.
func (h *BookingHandler) Book(c echo.Context) error {
    uid, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req bookReq
    if err := c.Bind(&req); err != nil || req.LotID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "lot_id required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    res, err := h.Bookings.Book(ctx, uid, req.LotID)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrLotNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        case errors.Is(err, repository.ErrNoSpotAvailable):
            return c.JSON(http.StatusConflict, echo.Map{"error": "no spot available"})
        case errors.Is(err, repository.ErrActiveReservation):
            return c.JSON(http.StatusConflict, echo.Map{"error": "active reservation exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
    }
    return c.JSON(http.StatusCreated, toReservationPart(res))
}

// Release closes the caller's reservation, frees its spot and returns the
// computed cost.  A reservation.closed event goes to the broker for the
// billing consumer; publish failures are logged but never fail the
// release, the database commit is the source of truth.
func (h *BookingHandler) Release(c echo.Context) error {
    uid, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    res, lot, err := h.Bookings.Release(ctx, uid, id)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrReservationNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        case errors.Is(err, repository.ErrAlreadyClosed):
            return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already closed"})
        case errors.Is(err, repository.ErrInvalidTimestamp):
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid timestamp"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
    }

    event := queue.ReservationClosedEvent{
        ReservationID: res.ID,
        UserID:        res.UserID,
        SpotID:        res.SpotID,
        LotID:         lot.ID,
        LotName:       lot.Name,
        InTime:        res.InTime.UTC().Format(time.RFC3339),
        Cost:          *res.Cost,
    }
    if res.OutTime != nil {
        event.OutTime = res.OutTime.UTC().Format(time.RFC3339)
    }
    logger := c.Logger()
    go func(ev queue.ReservationClosedEvent) {
        pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer pubCancel()
        if err := queue.PublishReservationClosed(pubCtx, ev); err != nil {
            logger.Warnf("publish reservation.closed failed: %v", err)
        }
    }(event)

    return c.JSON(http.StatusOK, toReservationPart(res))
}

// Active returns the caller's open reservation, or 404 when none exists.
func (h *BookingHandler) Active(c echo.Context) error {
    uid, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    res, err := h.Bookings.Active(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if res == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "no active reservation"})
    }
    return c.JSON(http.StatusOK, toReservationPart(res))
}

// History returns all of the caller's reservations, newest first.
func (h *BookingHandler) History(c echo.Context) error {
    uid, ok := userIDFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    items, err := h.Bookings.History(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if items == nil {
        items = []repository.HistoryItem{}
    }
    return c.JSON(http.StatusOK, items)
}

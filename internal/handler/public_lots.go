package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-lot-reservation/internal/repository"
    "github.com/iliyamo/parking-lot-reservation/internal/service"
)

// PublicHandler serves the unauthenticated browse endpoints.  Responses
// are cache candidates, so these handlers stay read-only.
type PublicHandler struct {
    Lots *service.LotService
}

func NewPublicHandler(lots *service.LotService) *PublicHandler {
    return &PublicHandler{Lots: lots}
}

// ListLots returns every lot together with its current count of
// available spots.
func (h *PublicHandler) ListLots(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    lots, err := h.Lots.ListLots(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]lotWithAvailability, 0, len(lots))
    for _, l := range lots {
        out = append(out, toLotWithAvailability(l))
    }
    return c.JSON(http.StatusOK, out)
}

// GetLot returns a single lot by id.
func (h *PublicHandler) GetLot(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    lot, err := h.Lots.GetLot(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrLotNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, toLotPart(lot))
}

// ListSpots returns the spots of a lot with their current status.
func (h *PublicHandler) ListSpots(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    spots, err := h.Lots.ListSpots(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrLotNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    out := make([]spotPart, 0, len(spots))
    for _, s := range spots {
        out = append(out, toSpotPart(s))
    }
    return c.JSON(http.StatusOK, out)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dasanworld/concert-reserve/internal/repository"
	"github.com/dasanworld/concert-reserve/internal/service"
)

// ConcertHandler serves the public browse endpoints: concert list,
// concert detail with tier pricing, and the per-concert seat map.
type ConcertHandler struct {
	Concerts *service.ConcertService
}

// NewConcertHandler constructs a ConcertHandler.
func NewConcertHandler(concerts *service.ConcertService) *ConcertHandler {
	if concerts == nil {
		panic("nil service passed to NewConcertHandler")
	}
	return &ConcertHandler{Concerts: concerts}
}

// List handles GET /v1/concerts. Only published concerts are returned,
// newest performance date first.
func (h *ConcertHandler) List(c echo.Context) error {
	concerts, err := h.Concerts.List(c.Request().Context())
	if err != nil {
		return errJSON(c, http.StatusInternalServerError, codeTxFailed, "Failed to load concerts.")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": concerts, "total": len(concerts)})
}

// Detail handles GET /v1/concerts/:id. Returns the concert with its
// seat tiers and pricing, or 404 when the concert does not exist or is
// not published.
func (h *ConcertHandler) Detail(c echo.Context) error {
	concert, tiers, err := h.Concerts.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrConcertNotFound) {
			return errJSON(c, http.StatusNotFound, codeConcertNotFound, "Concert not found.")
		}
		return errJSON(c, http.StatusInternalServerError, codeTxFailed, "Failed to load concert.")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"concert": concert,
		"tiers":   tiers,
	})
}

// Seats handles GET /v1/concerts/:id/seats. The seat map presents holds
// whose expiry has lapsed as available even before the sweeper clears
// them, so clients never see a seat as taken that a hold attempt would
// win.
func (h *ConcertHandler) Seats(c echo.Context) error {
	seatMap, err := h.Concerts.SeatsByConcert(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrConcertNotFound) {
			return errJSON(c, http.StatusNotFound, codeConcertNotFound, "Concert not found.")
		}
		return errJSON(c, http.StatusInternalServerError, codeTxFailed, "Failed to load seat map.")
	}
	return c.JSON(http.StatusOK, seatMap)
}

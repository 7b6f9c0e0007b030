package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dasanworld/concert-reserve/internal/model"
	"github.com/dasanworld/concert-reserve/internal/repository"
	"github.com/dasanworld/concert-reserve/internal/service"
)

// SeatHandler serves the hold endpoint. Holding is the contended step
// of the booking flow; everything here is a thin shell around
// HoldService, which owns the transactional semantics.
type SeatHandler struct {
	Holds *service.HoldService
}

// NewSeatHandler constructs a SeatHandler.
func NewSeatHandler(holds *service.HoldService) *SeatHandler {
	if holds == nil {
		panic("nil service passed to NewSeatHandler")
	}
	return &SeatHandler{Holds: holds}
}

// Hold handles POST /v1/seats/hold. The request body carries the target
// concert and 1..10 seat ids. On success every requested seat is held
// for five minutes and the response carries the expiry, per-seat detail,
// the total amount and a signed hold token. Any unavailable seat fails
// the whole request with 409 and the conflicting ids.
func (h *SeatHandler) Hold(c echo.Context) error {
	var body struct {
		ConcertID string   `json:"concertId"`
		SeatIDs   []string `json:"seatIds"`
	}
	if err := c.Bind(&body); err != nil {
		return errJSON(c, http.StatusBadRequest, codeValidation, "Invalid request body.")
	}
	if body.ConcertID == "" {
		return errJSON(c, http.StatusBadRequest, codeValidation, "concertId is required.")
	}

	result, err := h.Holds.HoldSeats(c.Request().Context(), body.ConcertID, body.SeatIDs)
	if err != nil {
		var conflict *service.SeatConflictError
		switch {
		case errors.Is(err, service.ErrNoSeatsSelected):
			return errJSON(c, http.StatusBadRequest, codeValidation, "At least one seat must be selected.")
		case errors.Is(err, service.ErrTooManySeats):
			return errJSON(c, http.StatusBadRequest, codeExceededMaxSeats,
				"A hold covers at most "+strconv.Itoa(model.MaxHoldSeats)+" seats.")
		case errors.Is(err, service.ErrInvalidSeatIDs):
			return errJSON(c, http.StatusBadRequest, codeInvalidSeatIDs, "One or more seat ids do not belong to this concert.")
		case errors.Is(err, repository.ErrConcertNotFound):
			return errJSON(c, http.StatusNotFound, codeConcertNotFound, "Concert not found.")
		case errors.As(err, &conflict):
			return conflictJSON(c, conflict)
		}
		return errJSON(c, http.StatusInternalServerError, codeTxFailed, "Failed to hold seats.")
	}
	return c.JSON(http.StatusCreated, result)
}

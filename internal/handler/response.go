// Package handler contains the Echo HTTP handlers. Handlers bind and
// validate request bodies, delegate to the service layer and translate
// its errors into the JSON error envelope:
//
//	{"error": {"code": "...", "message": "...", ...detail}}
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dasanworld/concert-reserve/internal/service"
)

// Error codes shared across handlers.
const (
	codeValidation        = "VALIDATION_ERROR"
	codeInvalidSeatIDs    = "INVALID_SEAT_IDS"
	codeExceededMaxSeats  = "EXCEEDED_MAX_SEATS"
	codeConcertNotFound   = "CONCERT_NOT_FOUND"
	codeReservationAbsent = "RESERVATION_NOT_FOUND"
	codeInvalidCreds      = "INVALID_CREDENTIALS"
	codeAlreadyCancelled  = "ALREADY_CANCELLED"
	codeTxFailed          = "DB_TRANSACTION_FAILED"
	codeCleanupFailed     = "CLEANUP_FAILED"
)

func errJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{
		"error": echo.Map{"code": code, "message": message},
	})
}

// conflictJSON renders a seat conflict with the offending seat ids under
// the detail field matching its code, so clients can retry with the
// conflicting seats removed.
func conflictJSON(c echo.Context, ce *service.SeatConflictError) error {
	body := echo.Map{"code": ce.Code}
	switch ce.Code {
	case service.CodeSeatsNotAvailable:
		body["message"] = "Some seats are no longer available."
		body["unavailableSeats"] = ce.SeatIDs
	case service.CodeSeatNotHeld:
		body["message"] = "Some seats are not currently held."
		body["notHeldSeats"] = ce.SeatIDs
	case service.CodeSeatHoldExpired:
		body["message"] = "The hold on some seats has expired."
		body["expiredSeats"] = ce.SeatIDs
	default:
		body["message"] = "Seat conflict."
		body["seats"] = ce.SeatIDs
	}
	return c.JSON(http.StatusConflict, echo.Map{"error": body})
}

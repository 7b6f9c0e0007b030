package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dasanworld/concert-reserve/internal/model"
	"github.com/dasanworld/concert-reserve/internal/queue"
	"github.com/dasanworld/concert-reserve/internal/repository"
	"github.com/dasanworld/concert-reserve/internal/service"
)

// Validation constants for the reservation form. These are part of the
// external contract and mirrored by clients.
const (
	minNameLen     = 2
	maxNameLen     = 50
	minPasswordLen = 8
	maxPasswordLen = 20
)

// phonePattern matches Korean mobile numbers in 010-XXXX-XXXX form.
var phonePattern = regexp.MustCompile(`^010-\d{4}-\d{4}$`)

// ReservationHandler serves reservation creation, retrieval,
// phone+password lookup and cancellation.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	if reservations == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations}
}

// Create handles POST /v1/reservations. It validates the customer form,
// then asks the service to convert held seats into a confirmed
// reservation. Seats that are not held or whose hold expired fail the
// whole request with 409 and the offending ids. On success a
// confirmation event is published; publishing is best-effort and never
// fails the request.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body struct {
		SeatIDs      []string `json:"seatIds"`
		CustomerName string   `json:"customerName"`
		PhoneNumber  string   `json:"phoneNumber"`
		Password     string   `json:"password"`
		HoldToken    string   `json:"holdToken"`
	}
	if err := c.Bind(&body); err != nil {
		return errJSON(c, http.StatusBadRequest, codeValidation, "Invalid request body.")
	}
	if msg := validateReservationForm(body.CustomerName, body.PhoneNumber, body.Password); msg != "" {
		return errJSON(c, http.StatusBadRequest, codeValidation, msg)
	}
	if n := len(body.SeatIDs); n < model.MinReservationSeats || n > model.MaxReservationSeats {
		return errJSON(c, http.StatusBadRequest, codeValidation,
			"A reservation covers "+strconv.Itoa(model.MinReservationSeats)+" to "+
				strconv.Itoa(model.MaxReservationSeats)+" seats.")
	}

	detail, err := h.Reservations.Create(c.Request().Context(), service.CreateReservationInput{
		SeatIDs:      body.SeatIDs,
		CustomerName: body.CustomerName,
		PhoneNumber:  body.PhoneNumber,
		Password:     body.Password,
		HoldToken:    body.HoldToken,
	})
	if err != nil {
		var conflict *service.SeatConflictError
		switch {
		case errors.Is(err, service.ErrNoSeatsSelected), errors.Is(err, service.ErrTooManySeats):
			return errJSON(c, http.StatusBadRequest, codeValidation, "Invalid seat selection.")
		case errors.Is(err, service.ErrInvalidSeatIDs):
			return errJSON(c, http.StatusBadRequest, codeInvalidSeatIDs, "One or more seat ids are invalid.")
		case errors.As(err, &conflict):
			return conflictJSON(c, conflict)
		}
		return errJSON(c, http.StatusInternalServerError, codeTxFailed, "Failed to create reservation.")
	}

	go publishConfirmed(detail)

	return c.JSON(http.StatusCreated, detail)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	detail, err := h.Reservations.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return errJSON(c, http.StatusNotFound, codeReservationAbsent, "Reservation not found.")
		}
		return errJSON(c, http.StatusInternalServerError, codeTxFailed, "Failed to load reservation.")
	}
	return c.JSON(http.StatusOK, detail)
}

// Lookup handles POST /v1/reservations/lookup. Missing reservation and
// wrong password return the same 401 payload; callers must not be able
// to probe which phone numbers have reservations.
func (h *ReservationHandler) Lookup(c echo.Context) error {
	var body struct {
		PhoneNumber string `json:"phoneNumber"`
		Password    string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return errJSON(c, http.StatusBadRequest, codeValidation, "Invalid request body.")
	}
	if body.PhoneNumber == "" || body.Password == "" {
		return errJSON(c, http.StatusBadRequest, codeValidation, "phoneNumber and password are required.")
	}

	id, err := h.Reservations.Lookup(c.Request().Context(), body.PhoneNumber, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return errJSON(c, http.StatusUnauthorized, codeInvalidCreds, "Phone number or password is incorrect.")
		}
		return errJSON(c, http.StatusInternalServerError, codeTxFailed, "Failed to look up reservation.")
	}
	return c.JSON(http.StatusOK, echo.Map{"reservationId": id})
}

// Cancel handles DELETE /v1/reservations/:id. Cancelling releases the
// reservation's seats back to available in the same transaction. A
// second cancel returns 409 rather than pretending to succeed.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	result, err := h.Reservations.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			return errJSON(c, http.StatusNotFound, codeReservationAbsent, "Reservation not found.")
		case errors.Is(err, service.ErrAlreadyCancelled):
			return errJSON(c, http.StatusConflict, codeAlreadyCancelled, "Reservation is already cancelled.")
		}
		return errJSON(c, http.StatusInternalServerError, codeTxFailed, "Failed to cancel reservation.")
	}

	go publishCancelled(result)

	return c.JSON(http.StatusOK, result)
}

func validateReservationForm(name, phone, password string) string {
	if n := len([]rune(name)); n < minNameLen || n > maxNameLen {
		return "customerName must be between " + strconv.Itoa(minNameLen) + " and " +
			strconv.Itoa(maxNameLen) + " characters."
	}
	if !phonePattern.MatchString(phone) {
		return "phoneNumber must match the 010-XXXX-XXXX format."
	}
	if n := len(password); n < minPasswordLen || n > maxPasswordLen {
		return "password must be between " + strconv.Itoa(minPasswordLen) + " and " +
			strconv.Itoa(maxPasswordLen) + " characters."
	}
	return ""
}

// contextWithTimeout bounds detached publish calls; the request context
// is already gone when these run.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func publishConfirmed(detail *model.ReservationDetail) {
	ctx, cancel := contextWithTimeout()
	defer cancel()

	labels := make([]string, 0, len(detail.Seats))
	for _, s := range detail.Seats {
		labels = append(labels, s.Label)
	}
	_ = queue.Publish(ctx, queue.ReservationConfirmedQueue, queue.ReservationConfirmedEvent{
		ReservationID:     detail.ReservationID,
		ReservationNumber: detail.ReservationNumber,
		ConcertID:         detail.ConcertID,
		ConcertTitle:      detail.ConcertTitle,
		CustomerName:      detail.CustomerName,
		SeatLabels:        labels,
		TotalAmount:       detail.TotalAmount,
		ConfirmedAt:       detail.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func publishCancelled(result *model.CancelResult) {
	ctx, cancel := contextWithTimeout()
	defer cancel()

	_ = queue.Publish(ctx, queue.ReservationCancelledQueue, queue.ReservationCancelledEvent{
		ReservationID:     result.ReservationID,
		ReservationNumber: result.ReservationNumber,
		ReleasedSeats:     result.ReleasedSeats,
		CancelledAt:       result.CancelledAt.UTC().Format(time.RFC3339),
	})
}

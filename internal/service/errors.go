// Package service implements the reservation domain operations: seat
// holds, reservation commits, expiration sweeps and lookup/cancel. Each
// operation runs its store writes inside a single SQL transaction and
// reports failures through the sentinel errors and conflict types
// defined here, so handlers can map them to HTTP codes without parsing
// messages.
package service

import (
	"errors"
	"fmt"
)

// Validation failures, rejected before any store access.
var (
	ErrNoSeatsSelected = errors.New("no seats selected")
	ErrTooManySeats    = errors.New("seat count exceeds the hold limit")
	ErrInvalidSeatIDs  = errors.New("invalid seat ids")
)

// ErrInvalidCredentials is returned for both "no reservation under this
// phone number" and "wrong password". The two cases must stay
// indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("phone number or password incorrect")

// ErrAlreadyCancelled is returned when cancelling a reservation that is
// not in confirmed state. Cancellation is idempotent in effect but
// loud: the second call gets this error, not a silent success.
var ErrAlreadyCancelled = errors.New("reservation already cancelled")

// ErrTransactionFailed wraps store failures that occur after the write
// sequence has started; the surrounding transaction has been rolled
// back by the time the caller sees it.
var ErrTransactionFailed = errors.New("transaction failed")

// Conflict codes carried by SeatConflictError.
const (
	CodeSeatsNotAvailable = "SEATS_NOT_AVAILABLE"
	CodeSeatNotHeld       = "SEAT_NOT_HELD"
	CodeSeatHoldExpired   = "SEAT_HOLD_EXPIRED"
)

// SeatConflictError reports which seats made a hold or commit fail, so
// the client can drop the offending seats and retry instead of
// restarting the whole flow.
type SeatConflictError struct {
	Code    string
	SeatIDs []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.SeatIDs)
}

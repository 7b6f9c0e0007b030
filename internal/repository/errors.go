// Package repository implements data access for concerts, seats and
// reservations on top of database/sql. Sentinel errors defined here let
// the service layer distinguish failure scenarios without inspecting
// driver-specific errors.
package repository

import "errors"

// ErrConcertNotFound is returned when a concert lookup yields no
// published, non-deleted row.
var ErrConcertNotFound = errors.New("concert not found")

// ErrReservationNotFound is returned when a reservation lookup yields
// no rows.
var ErrReservationNotFound = errors.New("reservation not found")

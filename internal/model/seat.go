package model

import "time"

// Seat status values. A seat whose hold has expired but has not been
// swept yet is still stored as temporarily_held; every read path must
// treat it as available.
const (
	SeatStatusAvailable = "available"
	SeatStatusHeld      = "temporarily_held"
	SeatStatusReserved  = "reserved"
)

// MaxHoldSeats bounds one hold request; MinReservationSeats and
// MaxReservationSeats bound one reservation. These limits are part of
// the external API contract.
const (
	MaxHoldSeats        = 10
	MinReservationSeats = 1
	MaxReservationSeats = 4
)

// HoldDuration is the fixed lifetime of a seat hold.
const HoldDuration = 5 * time.Minute

// Seat is one bookable seat of a concert. HoldExpiresAt is non-nil
// exactly while the seat is temporarily held.
type Seat struct {
	ID            string     `json:"id"`
	ConcertID     string     `json:"concertId"`
	SeatTierID    string     `json:"seatTierId"`
	Label         string     `json:"label"`
	SectionLabel  *string    `json:"sectionLabel"`
	RowLabel      *string    `json:"rowLabel"`
	RowNumber     *int       `json:"rowNumber"`
	SeatNumber    *int       `json:"seatNumber"`
	Status        string     `json:"status"`
	HoldExpiresAt *time.Time `json:"holdExpiresAt"`
}

// Available reports whether the seat can be newly held at the given
// instant. Expired holds count as available even before the sweeper has
// reverted them.
func (s *Seat) Available(now time.Time) bool {
	switch s.Status {
	case SeatStatusAvailable:
		return true
	case SeatStatusHeld:
		return s.HoldExpiresAt != nil && !s.HoldExpiresAt.After(now)
	default:
		return false
	}
}

// HeldSeat is the per-seat summary returned from a successful hold.
type HeldSeat struct {
	SeatID    string `json:"seatId"`
	Label     string `json:"label"`
	TierLabel string `json:"tierLabel"`
	Price     int64  `json:"price"`
}

// HoldResult is the outcome of a successful seat hold.
type HoldResult struct {
	HoldExpiresAt time.Time  `json:"holdExpiresAt"`
	HeldSeats     []HeldSeat `json:"heldSeats"`
	TotalAmount   int64      `json:"totalAmount"`
	HoldToken     string     `json:"holdToken"`
}

// ExpiredSeat identifies one seat reverted by the expiration sweeper.
type ExpiredSeat struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	ConcertID string `json:"concertId"`
}

// SweepResult reports one sweeper pass: how many rows were reverted and
// the pre-update snapshot of the seats that matched.
type SweepResult struct {
	ClearedCount int           `json:"clearedCount"`
	ExpiredSeats []ExpiredSeat `json:"expiredSeats"`
}

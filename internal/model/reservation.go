package model

import (
	"strings"
	"time"
)

// Reservation statuses.
const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

// Reservation is a confirmed purchase of one or more seats. The password
// hash authenticates later lookup and cancellation; there are no user
// accounts.
type Reservation struct {
	ID           string    `json:"id"`
	ConcertID    string    `json:"concertId"`
	CustomerName string    `json:"customerName"`
	PhoneNumber  string    `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReservationNumber derives the human-readable number shown to the
// customer: "RES" + creation date + the first three hex characters of
// the reservation id (dashes stripped, uppercased). Not globally unique
// by construction, but practically unique per day given id randomness.
func ReservationNumber(id string, createdAt time.Time) string {
	serial := strings.ReplaceAll(id, "-", "")
	if len(serial) > 3 {
		serial = serial[:3]
	}
	return "RES" + createdAt.UTC().Format("20060102") + strings.ToUpper(serial)
}

// ReservationDetail is the full reservation view returned by the API.
type ReservationDetail struct {
	ReservationID     string     `json:"reservationId"`
	ReservationNumber string     `json:"reservationNumber"`
	CustomerName      string     `json:"customerName"`
	PhoneNumber       string     `json:"phoneNumber"`
	Status            string     `json:"status"`
	ConcertID         string     `json:"concertId"`
	ConcertTitle      string     `json:"concertTitle"`
	ConcertDate       *time.Time `json:"concertDate"`
	ConcertVenue      *string    `json:"concertVenue"`
	Seats             []HeldSeat `json:"seats"`
	TotalAmount       int64      `json:"totalAmount"`
	SeatCount         int        `json:"seatCount"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// CancelResult reports a successful cancellation.
type CancelResult struct {
	ReservationID     string    `json:"reservationId"`
	ReservationNumber string    `json:"reservationNumber"`
	CancelledAt       time.Time `json:"cancelledAt"`
	ReleasedSeats     int       `json:"releasedSeats"`
}

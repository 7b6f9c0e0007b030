// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names. Both queues are durable; messages survive broker restarts.
const (
	ReservationConfirmedQueue = "reservation.confirmed"
	ReservationCancelledQueue = "reservation.cancelled"
)

// ReservationConfirmedEvent is published after a reservation commits.
// It carries enough detail for downstream consumers to log or notify
// without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID     string   `json:"reservation_id"`
	ReservationNumber string   `json:"reservation_number"`
	ConcertID         string   `json:"concert_id"`
	ConcertTitle      string   `json:"concert_title"`
	CustomerName      string   `json:"customer_name"`
	SeatLabels        []string `json:"seats"`
	TotalAmount       int64    `json:"total_amount"`
	ConfirmedAt       string   `json:"confirmed_at"`
}

// ReservationCancelledEvent is published after a cancellation releases
// the reservation's seats.
type ReservationCancelledEvent struct {
	ReservationID     string `json:"reservation_id"`
	ReservationNumber string `json:"reservation_number"`
	ReleasedSeats     int    `json:"released_seats"`
	CancelledAt       string `json:"cancelled_at"`
}

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeatAvailable(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	cases := []struct {
		name string
		seat Seat
		want bool
	}{
		{"available", Seat{Status: SeatStatusAvailable}, true},
		{"reserved", Seat{Status: SeatStatusReserved}, false},
		{"held live", Seat{Status: SeatStatusHeld, HoldExpiresAt: &future}, false},
		{"held lapsed", Seat{Status: SeatStatusHeld, HoldExpiresAt: &past}, true},
		{"held at exact expiry", Seat{Status: SeatStatusHeld, HoldExpiresAt: &now}, true},
		{"held missing expiry", Seat{Status: SeatStatusHeld}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.seat.Available(now))
		})
	}
}

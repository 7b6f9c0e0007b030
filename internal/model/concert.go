package model

import "time"

// Concert statuses. Only published concerts are visible to customers.
const (
	ConcertStatusDraft     = "draft"
	ConcertStatusPublished = "published"
)

// Concert is a single event customers can book seats for. Soft deletion
// is expressed through DeletedAt in the store; deleted concerts never
// reach the API.
type Concert struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Venue        *string    `json:"venue"`
	ConcertDate  *time.Time `json:"concertDate"`
	ThumbnailURL *string    `json:"thumbnailUrl"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// SeatTier is a priced category of seats within one concert (e.g. VIP,
// R, S). Tiers are created at concert setup and never mutated afterwards.
type SeatTier struct {
	ID        string `json:"id"`
	ConcertID string `json:"concertId"`
	Label     string `json:"label"`
	Price     int64  `json:"price"`
}

// TierAvailability is a per-tier seat count summary shown on the seat map.
type TierAvailability struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Price          int64  `json:"price"`
	AvailableCount int    `json:"availableCount"`
	HeldCount      int    `json:"heldCount"`
	ReservedCount  int    `json:"reservedCount"`
	TotalCount     int    `json:"totalCount"`
}

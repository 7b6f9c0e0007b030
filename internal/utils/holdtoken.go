package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HoldToken is a signed HS256 JWT binding a set of held seats to their
// concert and expiry. The client carries it forward from the seat map to
// the reservation form instead of stashing hold state in session
// storage; the server re-validates the seats against the store anyway,
// so the token is a consistency check, not an authorization grant.
type HoldToken struct {
	ConcertID string
	SeatIDs   []string
	ExpiresAt time.Time
}

// ErrHoldTokenInvalid is returned for malformed, tampered or expired
// hold tokens and for tokens that do not cover the requested seats.
var ErrHoldTokenInvalid = errors.New("invalid hold token")

// NewHoldToken signs a hold token. The JWT expiry equals the hold
// expiry, so the token dies with the hold.
func NewHoldToken(secret, concertID string, seatIDs []string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"concert_id": concertID,
		"seat_ids":   seatIDs,
		"exp":        expiresAt.UTC().Unix(),
		"iat":        time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseHoldToken verifies signature and expiry and unpacks the claims.
func ParseHoldToken(secret, token string) (*HoldToken, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrHoldTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrHoldTokenInvalid
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrHoldTokenInvalid
	}
	concertID, _ := claims["concert_id"].(string)
	rawIDs, _ := claims["seat_ids"].([]interface{})
	if concertID == "" || len(rawIDs) == 0 {
		return nil, ErrHoldTokenInvalid
	}
	seatIDs := make([]string, 0, len(rawIDs))
	for _, v := range rawIDs {
		s, ok := v.(string)
		if !ok {
			return nil, ErrHoldTokenInvalid
		}
		seatIDs = append(seatIDs, s)
	}
	ht := &HoldToken{ConcertID: concertID, SeatIDs: seatIDs}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ht.ExpiresAt = exp.Time
	}
	return ht, nil
}

// Covers reports whether every requested seat id appears in the token.
func (t *HoldToken) Covers(seatIDs []string) bool {
	held := make(map[string]struct{}, len(t.SeatIDs))
	for _, id := range t.SeatIDs {
		held[id] = struct{}{}
	}
	for _, id := range seatIDs {
		if _, ok := held[id]; !ok {
			return false
		}
	}
	return true
}

// SortedSeatIDs returns the token's seat ids in stable order, mostly
// for logging and tests.
func (t *HoldToken) SortedSeatIDs() []string {
	ids := append([]string(nil), t.SeatIDs...)
	sort.Strings(ids)
	return ids
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dasanworld/concert-reserve/internal/model"
	"github.com/dasanworld/concert-reserve/internal/repository"
	"github.com/dasanworld/concert-reserve/internal/utils"
)

// HoldService places time-bounded exclusive holds on seats. Two
// concurrent holds for the same seat race at the conditional update;
// the loser observes zero affected rows and the whole request is rolled
// back, so a failed hold never leaves stray held seats behind.
type HoldService struct {
	db          *sql.DB
	seats       *repository.SeatRepo
	concerts    *repository.ConcertRepo
	tokenSecret string
	now         func() time.Time
}

// NewHoldService constructs a HoldService. The token secret signs the
// hold tokens returned to clients.
func NewHoldService(db *sql.DB, seats *repository.SeatRepo, concerts *repository.ConcertRepo, tokenSecret string) *HoldService {
	return &HoldService{db: db, seats: seats, concerts: concerts, tokenSecret: tokenSecret, now: time.Now}
}

// HoldSeats validates availability of the requested seats and
// transitions all of them to temporarily_held with a fixed 5-minute
// expiry. Holds are all-or-nothing: any unavailable seat fails the
// whole request with a SeatConflictError listing the offenders.
func (s *HoldService) HoldSeats(ctx context.Context, concertID string, seatIDs []string) (*model.HoldResult, error) {
	ids := dedupe(seatIDs)
	if len(ids) == 0 {
		return nil, ErrNoSeatsSelected
	}
	if len(ids) > model.MaxHoldSeats {
		return nil, ErrTooManySeats
	}

	// Unknown, draft and deleted concerts all read as not found; seats
	// of a concert that is not published cannot be held.
	if _, err := s.concerts.GetByID(ctx, concertID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expiresAt := now.Add(model.HoldDuration)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seats, err := s.seats.GetForConcertTx(ctx, tx, concertID, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if len(seats) != len(ids) {
		return nil, ErrInvalidSeatIDs
	}

	unavailable := make([]string, 0)
	for i := range seats {
		if !seats[i].Available(now) {
			unavailable = append(unavailable, seats[i].ID)
		}
	}
	if len(unavailable) > 0 {
		return nil, &SeatConflictError{Code: CodeSeatsNotAvailable, SeatIDs: unavailable}
	}

	// The conditional updates are the actual concurrency guard: the
	// availability check above can go stale the moment it returns.
	lost := make([]string, 0)
	for _, id := range ids {
		won, err := s.seats.HoldTx(ctx, tx, concertID, id, now, expiresAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
		if !won {
			lost = append(lost, id)
		}
	}
	if len(lost) > 0 {
		// Rollback (via defer) releases the seats this request did win.
		return nil, &SeatConflictError{Code: CodeSeatsNotAvailable, SeatIDs: lost}
	}

	held, err := s.seats.DetailsTx(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	committed = true

	var total int64
	for _, h := range held {
		total += h.Price
	}
	token, err := utils.NewHoldToken(s.tokenSecret, concertID, ids, expiresAt)
	if err != nil {
		return nil, err
	}
	return &model.HoldResult{
		HoldExpiresAt: expiresAt,
		HeldSeats:     held,
		TotalAmount:   total,
		HoldToken:     token,
	}, nil
}

// dedupe drops empty and repeated ids while preserving order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

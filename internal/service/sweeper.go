package service

import (
	"context"
	"time"

	"github.com/dasanworld/concert-reserve/internal/model"
	"github.com/dasanworld/concert-reserve/internal/repository"
)

// SweepService reverts expired seat holds to available. The operation
// is idempotent and safe to run concurrently with holds, commits and
// cancellations: the bulk update only touches rows still matching
// "held and expired" at update time.
type SweepService struct {
	seats *repository.SeatRepo
	now   func() time.Time
}

// NewSweepService constructs a SweepService.
func NewSweepService(seats *repository.SeatRepo) *SweepService {
	return &SweepService{seats: seats, now: time.Now}
}

// SweepExpiredHolds finds every lapsed hold, reverts it and reports
// the affected count together with the pre-update snapshot. A second
// run with no intervening holds yields ClearedCount zero.
func (s *SweepService) SweepExpiredHolds(ctx context.Context) (*model.SweepResult, error) {
	now := s.now().UTC()
	expired, err := s.seats.ListExpiredHolds(ctx, now)
	if err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return &model.SweepResult{ClearedCount: 0, ExpiredSeats: []model.ExpiredSeat{}}, nil
	}
	cleared, err := s.seats.ClearExpiredHolds(ctx, now)
	if err != nil {
		return nil, err
	}
	return &model.SweepResult{ClearedCount: int(cleared), ExpiredSeats: expired}, nil
}

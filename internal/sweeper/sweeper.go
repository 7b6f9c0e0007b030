// Package sweeper runs the expired-hold cleanup on a fixed interval.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/dasanworld/concert-reserve/internal/model"
)

// holdSweeper is what the loop needs from the service layer.
type holdSweeper interface {
	SweepExpiredHolds(ctx context.Context) (*model.SweepResult, error)
}

// Sweeper triggers a sweep every interval until its context is
// cancelled. A failing sweep is logged and the loop keeps running;
// nobody is watching an unattended timer for panics.
type Sweeper struct {
	svc      holdSweeper
	interval time.Duration
}

// New constructs a Sweeper. Intervals below one second are clamped.
func New(svc holdSweeper, interval time.Duration) *Sweeper {
	if interval < time.Second {
		interval = time.Second
	}
	return &Sweeper{svc: svc, interval: interval}
}

// Start blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("sweeper: started (interval=%s)", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	result, err := s.svc.SweepExpiredHolds(ctx)
	if err != nil {
		log.Printf("sweeper: sweep failed: %v", err)
		return
	}
	if result.ClearedCount > 0 {
		log.Printf("sweeper: cleared %d expired holds", result.ClearedCount)
		for _, seat := range result.ExpiredSeats {
			log.Printf("sweeper: released seat %s (%s) concert=%s", seat.ID, seat.Label, seat.ConcertID)
		}
	}
}

package service

import (
	"context"
	"time"

	"github.com/dasanworld/concert-reserve/internal/model"
	"github.com/dasanworld/concert-reserve/internal/repository"
)

// ConcertService assembles the public browse views: concert list,
// concert detail and the per-concert seat map with tier availability.
type ConcertService struct {
	concerts *repository.ConcertRepo
	seats    *repository.SeatRepo
	now      func() time.Time
}

// NewConcertService constructs a ConcertService.
func NewConcertService(concerts *repository.ConcertRepo, seats *repository.SeatRepo) *ConcertService {
	return &ConcertService{concerts: concerts, seats: seats, now: time.Now}
}

// List returns all published concerts, newest first.
func (s *ConcertService) List(ctx context.Context) ([]model.Concert, error) {
	return s.concerts.List(ctx)
}

// Detail returns one published concert with its tiers.
func (s *ConcertService) Detail(ctx context.Context, concertID string) (*model.Concert, []model.SeatTier, error) {
	concert, err := s.concerts.GetByID(ctx, concertID)
	if err != nil {
		return nil, nil, err
	}
	tiers, err := s.concerts.ListTiers(ctx, concertID)
	if err != nil {
		return nil, nil, err
	}
	return concert, tiers, nil
}

// SeatMap is the snapshot returned by GET /v1/concerts/:id/seats.
type SeatMap struct {
	ConcertID    string                   `json:"concertId"`
	ConcertTitle string                   `json:"concertTitle"`
	Tiers        []model.TierAvailability `json:"tiers"`
	Seats        []model.Seat             `json:"seats"`
}

// SeatsByConcert loads the full seat map of a published concert with
// per-tier counts. A held seat whose expiry has lapsed is reported as
// available even before the sweeper has reverted the row.
func (s *ConcertService) SeatsByConcert(ctx context.Context, concertID string) (*SeatMap, error) {
	concert, err := s.concerts.GetByID(ctx, concertID)
	if err != nil {
		return nil, err
	}
	tiers, err := s.concerts.ListTiers(ctx, concertID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByConcert(ctx, concertID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	stats := make([]model.TierAvailability, 0, len(tiers))
	byTier := make(map[string]*model.TierAvailability, len(tiers))
	for _, t := range tiers {
		stats = append(stats, model.TierAvailability{ID: t.ID, Label: t.Label, Price: t.Price})
		byTier[t.ID] = &stats[len(stats)-1]
	}
	for i := range seats {
		// Present lapsed holds as available to every reader.
		if seats[i].Status == model.SeatStatusHeld && seats[i].Available(now) {
			seats[i].Status = model.SeatStatusAvailable
			seats[i].HoldExpiresAt = nil
		}
		ta, ok := byTier[seats[i].SeatTierID]
		if !ok {
			continue
		}
		ta.TotalCount++
		switch seats[i].Status {
		case model.SeatStatusAvailable:
			ta.AvailableCount++
		case model.SeatStatusHeld:
			ta.HeldCount++
		case model.SeatStatusReserved:
			ta.ReservedCount++
		}
	}

	return &SeatMap{
		ConcertID:    concert.ID,
		ConcertTitle: concert.Title,
		Tiers:        stats,
		Seats:        seats,
	}, nil
}

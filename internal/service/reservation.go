package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dasanworld/concert-reserve/internal/model"
	"github.com/dasanworld/concert-reserve/internal/repository"
	"github.com/dasanworld/concert-reserve/internal/utils"
)

// ReservationService converts live holds into confirmed reservations
// and implements lookup and cancellation. Commit and cancel run inside
// one SQL transaction each; a conditional-update undercount anywhere in
// the sequence aborts the whole transaction.
type ReservationService struct {
	db           *sql.DB
	seats        *repository.SeatRepo
	reservations *repository.ReservationRepo
	concerts     *repository.ConcertRepo
	bcryptCost   int
	tokenSecret  string
	now          func() time.Time
}

// NewReservationService constructs a ReservationService.
func NewReservationService(db *sql.DB, seats *repository.SeatRepo, reservations *repository.ReservationRepo, concerts *repository.ConcertRepo, bcryptCost int, tokenSecret string) *ReservationService {
	return &ReservationService{
		db:           db,
		seats:        seats,
		reservations: reservations,
		concerts:     concerts,
		bcryptCost:   bcryptCost,
		tokenSecret:  tokenSecret,
		now:          time.Now,
	}
}

// CreateReservationInput carries the reservation form. HoldToken is
// optional; when present it must verify and cover every requested seat.
type CreateReservationInput struct {
	SeatIDs      []string
	CustomerName string
	PhoneNumber  string
	Password     string
	HoldToken    string
}

// Create re-validates that every requested seat is still held and not
// expired, then persists the reservation, its seat links and the
// held→reserved transition atomically.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*model.ReservationDetail, error) {
	ids := dedupe(in.SeatIDs)
	if len(ids) < model.MinReservationSeats {
		return nil, ErrNoSeatsSelected
	}
	if len(ids) > model.MaxReservationSeats {
		return nil, ErrTooManySeats
	}
	if in.HoldToken != "" {
		ht, err := utils.ParseHoldToken(s.tokenSecret, in.HoldToken)
		if err != nil {
			return nil, err
		}
		if !ht.Covers(ids) {
			return nil, utils.ErrHoldTokenInvalid
		}
	}

	// Hash before opening the transaction; bcrypt is deliberately slow.
	passwordHash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
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

	seats, err := s.seats.GetByIDsTx(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if len(seats) != len(ids) {
		return nil, &SeatConflictError{Code: CodeSeatNotHeld, SeatIDs: missingIDs(ids, seats)}
	}

	notHeld := make([]string, 0)
	expired := make([]string, 0)
	for i := range seats {
		switch {
		case seats[i].Status != model.SeatStatusHeld:
			notHeld = append(notHeld, seats[i].ID)
		case seats[i].HoldExpiresAt == nil || !seats[i].HoldExpiresAt.After(now):
			expired = append(expired, seats[i].ID)
		}
	}
	// Not-held wins over expired: the client must re-select those seats,
	// not just retry the hold.
	if len(notHeld) > 0 {
		return nil, &SeatConflictError{Code: CodeSeatNotHeld, SeatIDs: notHeld}
	}
	if len(expired) > 0 {
		return nil, &SeatConflictError{Code: CodeSeatHoldExpired, SeatIDs: expired}
	}

	// All seats of one hold share a concert.
	concertID := seats[0].ConcertID

	res := &model.Reservation{
		ID:           uuid.NewString(),
		ConcertID:    concertID,
		CustomerName: in.CustomerName,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: passwordHash,
		Status:       model.ReservationStatusConfirmed,
		CreatedAt:    now,
	}
	if err := s.reservations.CreateTx(ctx, tx, res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if err := s.reservations.AddSeatsTx(ctx, tx, res.ID, ids); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	for _, id := range ids {
		won, err := s.seats.ReserveTx(ctx, tx, id, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
		if !won {
			// A competing commit or the sweeper got there first.
			return nil, &SeatConflictError{Code: CodeSeatNotHeld, SeatIDs: []string{id}}
		}
	}

	held, err := s.seats.DetailsTx(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	committed = true

	detail := buildDetail(res, held)
	if concert, err := s.concerts.GetByIDAny(ctx, concertID); err == nil {
		detail.ConcertTitle = concert.Title
		detail.ConcertDate = concert.ConcertDate
		detail.ConcertVenue = concert.Venue
	}
	return detail, nil
}

// Get returns the full reservation view, including cancelled
// reservations; they are never physically deleted.
func (s *ReservationService) Get(ctx context.Context, id string) (*model.ReservationDetail, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	seatIDs, err := s.reservations.SeatIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	held, err := s.seats.Details(ctx, seatIDs)
	if err != nil {
		return nil, err
	}
	detail := buildDetail(res, held)
	if concert, err := s.concerts.GetByIDAny(ctx, res.ConcertID); err == nil {
		detail.ConcertTitle = concert.Title
		detail.ConcertDate = concert.ConcertDate
		detail.ConcertVenue = concert.Venue
	}
	return detail, nil
}

// Lookup authenticates a reservation owner by phone number and
// password. Every failure mode collapses into ErrInvalidCredentials so
// callers cannot probe which phone numbers have reservations.
func (s *ReservationService) Lookup(ctx context.Context, phoneNumber, password string) (string, error) {
	res, err := s.reservations.FindConfirmedByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !utils.VerifyPassword(res.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return res.ID, nil
}

// Cancel flips a confirmed reservation to cancelled and releases its
// seats back to available. A second cancel returns ErrAlreadyCancelled
// and touches nothing.
func (s *ReservationService) Cancel(ctx context.Context, id string) (*model.CancelResult, error) {
	now := s.now().UTC()
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

	res, err := s.reservations.GetByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != model.ReservationStatusConfirmed {
		return nil, ErrAlreadyCancelled
	}
	won, err := s.reservations.CancelTx(ctx, tx, id, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if !won {
		return nil, ErrAlreadyCancelled
	}
	seatIDs, err := s.reservations.SeatIDsTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	released, err := s.seats.ReleaseReservedTx(ctx, tx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	committed = true

	return &model.CancelResult{
		ReservationID:     res.ID,
		ReservationNumber: model.ReservationNumber(res.ID, res.CreatedAt),
		CancelledAt:       now,
		ReleasedSeats:     int(released),
	}, nil
}

func buildDetail(res *model.Reservation, held []model.HeldSeat) *model.ReservationDetail {
	var total int64
	for _, h := range held {
		total += h.Price
	}
	return &model.ReservationDetail{
		ReservationID:     res.ID,
		ReservationNumber: model.ReservationNumber(res.ID, res.CreatedAt),
		CustomerName:      res.CustomerName,
		PhoneNumber:       res.PhoneNumber,
		Status:            res.Status,
		ConcertID:         res.ConcertID,
		Seats:             held,
		TotalAmount:       total,
		SeatCount:         len(held),
		CreatedAt:         res.CreatedAt,
	}
}

func missingIDs(requested []string, found []model.Seat) []string {
	present := make(map[string]struct{}, len(found))
	for i := range found {
		present[found[i].ID] = struct{}{}
	}
	missing := make([]string, 0)
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

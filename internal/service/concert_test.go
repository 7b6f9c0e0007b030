package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasanworld/concert-reserve/internal/model"
	"github.com/dasanworld/concert-reserve/internal/repository"
)

func newConcertService(t *testing.T) (*ConcertService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewConcertService(repository.NewConcertRepo(db), repository.NewSeatRepo(db))
	svc.now = func() time.Time { return testNow }
	return svc, mock
}

func TestSeatsByConcert_LapsedHoldsPresentAsAvailable(t *testing.T) {
	svc, mock := newConcertService(t)

	live := testNow.Add(3 * time.Minute)
	lapsed := testNow.Add(-time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM concerts").WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(concertColumns()).
			AddRow("c1", "Spring Tour Finale", nil, nil, nil, model.ConcertStatusPublished, testNow, testNow))
	mock.ExpectQuery("SELECT (.+) FROM concert_seat_tiers").WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "concert_id", "label", "price"}).
			AddRow("tier-1", "c1", "VIP", 150000))

	seats := sqlmock.NewRows(seatRowColumns())
	addSeatRow(seats, "s1", "c1", model.SeatStatusAvailable, nil)
	addSeatRow(seats, "s2", "c1", model.SeatStatusHeld, &live)
	addSeatRow(seats, "s3", "c1", model.SeatStatusHeld, &lapsed)
	addSeatRow(seats, "s4", "c1", model.SeatStatusReserved, nil)
	mock.ExpectQuery("SELECT (.+) FROM seats").WithArgs("c1").WillReturnRows(seats)

	seatMap, err := svc.SeatsByConcert(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "Spring Tour Finale", seatMap.ConcertTitle)
	require.Len(t, seatMap.Seats, 4)

	byID := map[string]model.Seat{}
	for _, s := range seatMap.Seats {
		byID[s.ID] = s
	}
	assert.Equal(t, model.SeatStatusHeld, byID["s2"].Status)
	assert.Equal(t, model.SeatStatusAvailable, byID["s3"].Status)
	assert.Nil(t, byID["s3"].HoldExpiresAt)

	require.Len(t, seatMap.Tiers, 1)
	tier := seatMap.Tiers[0]
	assert.Equal(t, 4, tier.TotalCount)
	assert.Equal(t, 2, tier.AvailableCount)
	assert.Equal(t, 1, tier.HeldCount)
	assert.Equal(t, 1, tier.ReservedCount)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatsByConcert_UnknownConcert(t *testing.T) {
	svc, mock := newConcertService(t)

	mock.ExpectQuery("SELECT (.+) FROM concerts").WillReturnError(sql.ErrNoRows)

	_, err := svc.SeatsByConcert(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrConcertNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDetail_DraftConcertHidden(t *testing.T) {
	svc, mock := newConcertService(t)

	// The published-only filter lives in the SQL; an unmatched row comes
	// back as no rows at all.
	mock.ExpectQuery("SELECT (.+) FROM concerts").WillReturnError(sql.ErrNoRows)

	_, _, err := svc.Detail(context.Background(), "draft-concert")
	assert.ErrorIs(t, err, repository.ErrConcertNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasanworld/concert-reserve/internal/model"
	"github.com/dasanworld/concert-reserve/internal/repository"
	"github.com/dasanworld/concert-reserve/internal/utils"
)

// testNow sits slightly in the future so signed hold tokens minted
// against it are still live when the JWT library checks their expiry
// against the wall clock.
var testNow = time.Now().UTC().Add(time.Hour).Truncate(time.Second)

const testSecret = "test-hold-secret"

func newHoldService(t *testing.T) (*HoldService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewHoldService(db, repository.NewSeatRepo(db), repository.NewConcertRepo(db), testSecret)
	svc.now = func() time.Time { return testNow }
	return svc, mock
}

// expectPublishedConcert queues the existence check that every hold
// performs before opening its transaction.
func expectPublishedConcert(mock sqlmock.Sqlmock, concertID string) {
	mock.ExpectQuery("SELECT (.+) FROM concerts").
		WithArgs(concertID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "venue", "concert_date", "thumbnail_url", "status", "created_at", "updated_at"}).
			AddRow(concertID, "Spring Tour Finale", nil, nil, nil, model.ConcertStatusPublished, testNow, testNow))
}

func seatRowColumns() []string {
	return []string{"id", "concert_id", "seat_tier_id", "label", "section_label",
		"row_label", "row_number", "seat_number", "status", "hold_expires_at"}
}

func addSeatRow(rows *sqlmock.Rows, id, concertID, status string, expiry *time.Time) *sqlmock.Rows {
	return rows.AddRow(id, concertID, "tier-1", "A-"+id, nil, nil, nil, nil, status, expiry)
}

func TestHoldSeats_Success(t *testing.T) {
	svc, mock := newHoldService(t)

	seats := sqlmock.NewRows(seatRowColumns())
	addSeatRow(seats, "s1", "c1", model.SeatStatusAvailable, nil)
	addSeatRow(seats, "s2", "c1", model.SeatStatusAvailable, nil)

	details := sqlmock.NewRows([]string{"id", "label", "label", "price"}).
		AddRow("s1", "A-s1", "VIP", 150000).
		AddRow("s2", "A-s2", "VIP", 150000)

	expectPublishedConcert(mock, "c1")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM seats").
		WithArgs("c1", "s1", "s2").
		WillReturnRows(seats)
	mock.ExpectExec("UPDATE seats").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE seats").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT s.id, s.label").WillReturnRows(details)
	mock.ExpectCommit()

	result, err := svc.HoldSeats(context.Background(), "c1", []string{"s1", "s2"})
	require.NoError(t, err)

	assert.Equal(t, testNow.Add(model.HoldDuration), result.HoldExpiresAt)
	assert.Len(t, result.HeldSeats, 2)
	assert.Equal(t, int64(300000), result.TotalAmount)

	token, err := utils.ParseHoldToken(testSecret, result.HoldToken)
	require.NoError(t, err)
	assert.Equal(t, "c1", token.ConcertID)
	assert.Equal(t, []string{"s1", "s2"}, token.SortedSeatIDs())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldSeats_ExpiredHoldIsHoldable(t *testing.T) {
	svc, mock := newHoldService(t)

	// A hold that lapsed but was not yet swept must not block a new buyer.
	lapsed := testNow.Add(-time.Minute)
	seats := sqlmock.NewRows(seatRowColumns())
	addSeatRow(seats, "s1", "c1", model.SeatStatusHeld, &lapsed)

	details := sqlmock.NewRows([]string{"id", "label", "label", "price"}).
		AddRow("s1", "A-s1", "R", 90000)

	expectPublishedConcert(mock, "c1")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM seats").WillReturnRows(seats)
	mock.ExpectExec("UPDATE seats").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT s.id, s.label").WillReturnRows(details)
	mock.ExpectCommit()

	result, err := svc.HoldSeats(context.Background(), "c1", []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, int64(90000), result.TotalAmount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldSeats_UnavailableSeatFailsWholeRequest(t *testing.T) {
	svc, mock := newHoldService(t)

	live := testNow.Add(3 * time.Minute)
	seats := sqlmock.NewRows(seatRowColumns())
	addSeatRow(seats, "s1", "c1", model.SeatStatusAvailable, nil)
	addSeatRow(seats, "s2", "c1", model.SeatStatusReserved, nil)
	addSeatRow(seats, "s3", "c1", model.SeatStatusHeld, &live)

	expectPublishedConcert(mock, "c1")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM seats").WillReturnRows(seats)
	mock.ExpectRollback()

	_, err := svc.HoldSeats(context.Background(), "c1", []string{"s1", "s2", "s3"})

	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeSeatsNotAvailable, conflict.Code)
	assert.ElementsMatch(t, []string{"s2", "s3"}, conflict.SeatIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldSeats_LostRaceRollsBackWonSeats(t *testing.T) {
	svc, mock := newHoldService(t)

	seats := sqlmock.NewRows(seatRowColumns())
	addSeatRow(seats, "s1", "c1", model.SeatStatusAvailable, nil)
	addSeatRow(seats, "s2", "c1", model.SeatStatusAvailable, nil)

	expectPublishedConcert(mock, "c1")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM seats").WillReturnRows(seats)
	// s1 is won, s2 was taken between the availability check and the
	// conditional update. The rollback must release s1 again.
	mock.ExpectExec("UPDATE seats").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE seats").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.HoldSeats(context.Background(), "c1", []string{"s1", "s2"})

	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, CodeSeatsNotAvailable, conflict.Code)
	assert.Equal(t, []string{"s2"}, conflict.SeatIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldSeats_UnknownSeatID(t *testing.T) {
	svc, mock := newHoldService(t)

	seats := sqlmock.NewRows(seatRowColumns())
	addSeatRow(seats, "s1", "c1", model.SeatStatusAvailable, nil)

	expectPublishedConcert(mock, "c1")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM seats").WillReturnRows(seats)
	mock.ExpectRollback()

	_, err := svc.HoldSeats(context.Background(), "c1", []string{"s1", "nope"})
	assert.ErrorIs(t, err, ErrInvalidSeatIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldSeats_Validation(t *testing.T) {
	svc, mock := newHoldService(t)

	_, err := svc.HoldSeats(context.Background(), "c1", nil)
	assert.ErrorIs(t, err, ErrNoSeatsSelected)

	_, err = svc.HoldSeats(context.Background(), "c1", []string{"", ""})
	assert.ErrorIs(t, err, ErrNoSeatsSelected)

	ids := make([]string, model.MaxHoldSeats+1)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}
	_, err = svc.HoldSeats(context.Background(), "c1", ids)
	assert.ErrorIs(t, err, ErrTooManySeats)

	// Duplicates collapse before the limit check.
	dup := make([]string, 0, model.MaxHoldSeats*2)
	for i := 0; i < model.MaxHoldSeats; i++ {
		id := string(rune('a' + i))
		dup = append(dup, id, id)
	}
	seats := sqlmock.NewRows(seatRowColumns())
	for i := 0; i < model.MaxHoldSeats; i++ {
		addSeatRow(seats, string(rune('a'+i)), "c1", model.SeatStatusAvailable, nil)
	}
	details := sqlmock.NewRows([]string{"id", "label", "label", "price"})
	for i := 0; i < model.MaxHoldSeats; i++ {
		id := string(rune('a' + i))
		details.AddRow(id, "A-"+id, "S", 50000)
	}
	expectPublishedConcert(mock, "c1")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM seats").WillReturnRows(seats)
	for i := 0; i < model.MaxHoldSeats; i++ {
		mock.ExpectExec("UPDATE seats").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectQuery("SELECT s.id, s.label").WillReturnRows(details)
	mock.ExpectCommit()

	result, err := svc.HoldSeats(context.Background(), "c1", dup)
	require.NoError(t, err)
	assert.Len(t, result.HeldSeats, model.MaxHoldSeats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldSeats_UnknownConcert(t *testing.T) {
	svc, mock := newHoldService(t)

	mock.ExpectQuery("SELECT (.+) FROM concerts").WillReturnError(sql.ErrNoRows)

	_, err := svc.HoldSeats(context.Background(), "missing", []string{"s1"})
	assert.ErrorIs(t, err, repository.ErrConcertNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldSeats_BeginFailure(t *testing.T) {
	svc, mock := newHoldService(t)

	expectPublishedConcert(mock, "c1")
	mock.ExpectBegin().WillReturnError(errors.New("connection gone"))

	_, err := svc.HoldSeats(context.Background(), "c1", []string{"s1"})
	assert.ErrorIs(t, err, ErrTransactionFailed)
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dasanworld/concert-reserve/internal/model"
)

// SeatRepo provides data access to the seats table. Every mutation is a
// conditional update whose WHERE clause re-states the expected prior
// status; the affected-row count tells the caller whether it won the
// race. This is the only concurrency control in the system. There are
// no application-level locks.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// DB exposes the underlying handle for transaction scoping.
func (r *SeatRepo) DB() *sql.DB { return r.db }

const seatColumns = `id, concert_id, seat_tier_id, label, section_label, row_label, row_number, seat_number, status, hold_expires_at`

func scanSeat(rows *sql.Rows) (model.Seat, error) {
	var s model.Seat
	var section, rowLabel sql.NullString
	var rowNum, seatNum sql.NullInt64
	var expiry sql.NullTime
	err := rows.Scan(&s.ID, &s.ConcertID, &s.SeatTierID, &s.Label,
		&section, &rowLabel, &rowNum, &seatNum, &s.Status, &expiry)
	if err != nil {
		return s, err
	}
	if section.Valid {
		v := section.String
		s.SectionLabel = &v
	}
	if rowLabel.Valid {
		v := rowLabel.String
		s.RowLabel = &v
	}
	if rowNum.Valid {
		n := int(rowNum.Int64)
		s.RowNumber = &n
	}
	if seatNum.Valid {
		n := int(seatNum.Int64)
		s.SeatNumber = &n
	}
	if expiry.Valid {
		t := expiry.Time
		s.HoldExpiresAt = &t
	}
	return s, nil
}

// placeholders returns "?, ?, ..." for n bound values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ids []string) []interface{} {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

// ListByConcert returns every non-deleted seat of a concert ordered by
// label for a deterministic seat map.
func (r *SeatRepo) ListByConcert(ctx context.Context, concertID string) ([]model.Seat, error) {
	q := `SELECT ` + seatColumns + `
	      FROM seats
	      WHERE concert_id = ? AND deleted_at IS NULL
	      ORDER BY label`
	rows, err := r.db.QueryContext(ctx, q, concertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// GetForConcertTx fetches the given seat ids scoped to one concert
// within a transaction. Ids that do not exist, belong to another
// concert or are soft-deleted are simply absent from the result; the
// caller detects them by comparing counts.
func (r *SeatRepo) GetForConcertTx(ctx context.Context, tx *sql.Tx, concertID string, seatIDs []string) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT ` + seatColumns + `
	      FROM seats
	      WHERE concert_id = ? AND deleted_at IS NULL AND id IN (` + placeholders(len(seatIDs)) + `)`
	args := append([]interface{}{concertID}, idArgs(seatIDs)...)
	return querySeats(ctx, tx, q, args...)
}

// GetByIDsTx fetches seats by id only; reservation commits use it since
// seat ids are globally unique.
func (r *SeatRepo) GetByIDsTx(ctx context.Context, tx *sql.Tx, seatIDs []string) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT ` + seatColumns + `
	      FROM seats
	      WHERE deleted_at IS NULL AND id IN (` + placeholders(len(seatIDs)) + `)`
	return querySeats(ctx, tx, q, idArgs(seatIDs)...)
}

func querySeats(ctx context.Context, tx *sql.Tx, q string, args ...interface{}) ([]model.Seat, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// HoldTx attempts to transition one seat to temporarily_held with the
// given expiry. The predicate accepts seats that are available or whose
// previous hold has already lapsed, so an expired-but-unswept hold does
// not block a new buyer. Returns whether the row was won.
func (r *SeatRepo) HoldTx(ctx context.Context, tx *sql.Tx, concertID, seatID string, now, expiresAt time.Time) (bool, error) {
	const q = `UPDATE seats
	           SET status = 'temporarily_held', hold_expires_at = ?
	           WHERE id = ? AND concert_id = ? AND deleted_at IS NULL
	             AND (status = 'available'
	                  OR (status = 'temporarily_held' AND hold_expires_at <= ?))`
	res, err := tx.ExecContext(ctx, q, expiresAt.UTC(), seatID, concertID, now.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReserveTx transitions one held seat to reserved, clearing the expiry.
// The hold must still be live at the given instant; a lapsed or missing
// hold leaves the row untouched and returns false.
func (r *SeatRepo) ReserveTx(ctx context.Context, tx *sql.Tx, seatID string, now time.Time) (bool, error) {
	const q = `UPDATE seats
	           SET status = 'reserved', hold_expires_at = NULL
	           WHERE id = ? AND deleted_at IS NULL
	             AND status = 'temporarily_held' AND hold_expires_at > ?`
	res, err := tx.ExecContext(ctx, q, seatID, now.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseReservedTx reverts reserved seats to available when their
// reservation is cancelled. Only rows still in reserved state are
// touched; the count of released seats is returned.
func (r *SeatRepo) ReleaseReservedTx(ctx context.Context, tx *sql.Tx, seatIDs []string) (int64, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	q := `UPDATE seats
	      SET status = 'available', hold_expires_at = NULL
	      WHERE status = 'reserved' AND id IN (` + placeholders(len(seatIDs)) + `)`
	res, err := tx.ExecContext(ctx, q, idArgs(seatIDs)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListExpiredHolds returns a snapshot of all seats whose hold lapsed
// before the given instant. The sweeper reports this snapshot for
// observability before reverting the rows.
func (r *SeatRepo) ListExpiredHolds(ctx context.Context, now time.Time) ([]model.ExpiredSeat, error) {
	const q = `SELECT id, label, concert_id
	           FROM seats
	           WHERE status = 'temporarily_held' AND hold_expires_at < ? AND deleted_at IS NULL`
	rows, err := r.db.QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expired := make([]model.ExpiredSeat, 0)
	for rows.Next() {
		var e model.ExpiredSeat
		if err := rows.Scan(&e.ID, &e.Label, &e.ConcertID); err != nil {
			return nil, err
		}
		expired = append(expired, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expired, nil
}

// ClearExpiredHolds reverts every lapsed hold to available in one bulk
// update. The predicate is re-applied at update time, so a seat that
// was committed or re-held between the sweeper's query and this update
// is left alone. Safe to run concurrently with itself.
func (r *SeatRepo) ClearExpiredHolds(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE seats
	           SET status = 'available', hold_expires_at = NULL
	           WHERE status = 'temporarily_held' AND hold_expires_at < ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const seatDetailQuery = `SELECT s.id, s.label, t.label, t.price
	 FROM seats s
	 JOIN concert_seat_tiers t ON t.id = s.seat_tier_id
	 WHERE s.id IN (%s)
	 ORDER BY s.label`

// DetailsTx loads seat labels with tier labels and prices for response
// construction, inside a transaction.
func (r *SeatRepo) DetailsTx(ctx context.Context, tx *sql.Tx, seatIDs []string) ([]model.HeldSeat, error) {
	if len(seatIDs) == 0 {
		return []model.HeldSeat{}, nil
	}
	q := strings.Replace(seatDetailQuery, "%s", placeholders(len(seatIDs)), 1)
	rows, err := tx.QueryContext(ctx, q, idArgs(seatIDs)...)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

// Details is the non-transactional variant used by reservation reads.
func (r *SeatRepo) Details(ctx context.Context, seatIDs []string) ([]model.HeldSeat, error) {
	if len(seatIDs) == 0 {
		return []model.HeldSeat{}, nil
	}
	q := strings.Replace(seatDetailQuery, "%s", placeholders(len(seatIDs)), 1)
	rows, err := r.db.QueryContext(ctx, q, idArgs(seatIDs)...)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

func collectDetails(rows *sql.Rows) ([]model.HeldSeat, error) {
	defer rows.Close()
	details := make([]model.HeldSeat, 0)
	for rows.Next() {
		var d model.HeldSeat
		if err := rows.Scan(&d.SeatID, &d.Label, &d.TierLabel, &d.Price); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dasanworld/concert-reserve/internal/model"
)

// ReservationRepo provides data access to reservations and the
// reservation_seats join table. All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo constructs a ReservationRepo with the given DB handle.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// CreateTx inserts a reservation row within the provided transaction.
// The caller supplies the generated id; CreatedAt is populated on the
// record from the insert timestamp.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (id, concert_id, customer_name, phone_number, password_hash, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res.CreatedAt = res.CreatedAt.UTC()
	_, err := tx.ExecContext(ctx, q,
		res.ID, res.ConcertID, res.CustomerName, res.PhoneNumber, res.PasswordHash, res.Status, res.CreatedAt)
	return err
}

// AddSeatsTx inserts one join row per seat in a single statement.
func (r *ReservationRepo) AddSeatsTx(ctx context.Context, tx *sql.Tx, reservationID string, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_seats (reservation_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*2)
	values := make([]string, 0, len(seatIDs))
	for _, sid := range seatIDs {
		values = append(values, "(?, ?)")
		args = append(args, reservationID, sid)
	}
	query += strings.Join(values, ",")
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const reservationColumns = `id, concert_id, customer_name, phone_number, password_hash, status, created_at`

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.ConcertID, &res.CustomerName, &res.PhoneNumber,
		&res.PasswordHash, &res.Status, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByID returns a reservation regardless of status. Cancelled
// reservations stay retrievable; they are never physically deleted.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is the transactional variant of GetByID. The row is locked
// for the duration of the transaction so concurrent cancellations
// serialize on it.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	return scanReservation(tx.QueryRowContext(ctx, q, id))
}

// FindConfirmedByPhone returns the most recent confirmed reservation
// registered under the exact phone number. ErrReservationNotFound maps
// to the generic invalid-credentials error in the service layer; it
// must never leak to the client as-is.
func (r *ReservationRepo) FindConfirmedByPhone(ctx context.Context, phone string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
	      FROM reservations
	      WHERE phone_number = ? AND status = 'confirmed'
	      ORDER BY created_at DESC
	      LIMIT 1`
	return scanReservation(r.db.QueryRowContext(ctx, q, phone))
}

// CancelTx flips a confirmed reservation to cancelled. Returns whether
// the row was still confirmed at update time.
func (r *ReservationRepo) CancelTx(ctx context.Context, tx *sql.Tx, id string, now time.Time) (bool, error) {
	const q = `UPDATE reservations
	           SET status = 'cancelled', updated_at = ?
	           WHERE id = ? AND status = 'confirmed'`
	res, err := tx.ExecContext(ctx, q, now.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SeatIDs returns the ids of all seats linked to a reservation.
func (r *ReservationRepo) SeatIDs(ctx context.Context, id string) ([]string, error) {
	return seatIDsQuery(ctx, r.db.QueryContext, id)
}

// SeatIDsTx is the transactional variant of SeatIDs.
func (r *ReservationRepo) SeatIDsTx(ctx context.Context, tx *sql.Tx, id string) ([]string, error) {
	return seatIDsQuery(ctx, tx.QueryContext, id)
}

type queryFunc func(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

func seatIDsQuery(ctx context.Context, query queryFunc, id string) ([]string, error) {
	const q = `SELECT seat_id FROM reservation_seats WHERE reservation_id = ?`
	rows, err := query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		ids = append(ids, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

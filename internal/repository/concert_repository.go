package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dasanworld/concert-reserve/internal/model"
)

// ConcertRepo provides read access to concerts and their seat tiers.
// Concert and tier rows are created at setup time outside this service,
// so the repository exposes no mutation methods.
type ConcertRepo struct {
	db *sql.DB
}

// NewConcertRepo constructs a ConcertRepo with the given DB handle.
func NewConcertRepo(db *sql.DB) *ConcertRepo {
	return &ConcertRepo{db: db}
}

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *ConcertRepo) DB() *sql.DB { return r.db }

// List returns all published, non-deleted concerts ordered newest first.
func (r *ConcertRepo) List(ctx context.Context) ([]model.Concert, error) {
	const q = `SELECT id, title, venue, concert_date, thumbnail_url, status, created_at, updated_at
	           FROM concerts
	           WHERE status = 'published' AND deleted_at IS NULL
	           ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	concerts := make([]model.Concert, 0)
	for rows.Next() {
		var c model.Concert
		var venue, thumb sql.NullString
		var date sql.NullTime
		if err := rows.Scan(&c.ID, &c.Title, &venue, &date, &thumb, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if venue.Valid {
			v := venue.String
			c.Venue = &v
		}
		if date.Valid {
			d := date.Time
			c.ConcertDate = &d
		}
		if thumb.Valid {
			t := thumb.String
			c.ThumbnailURL = &t
		}
		concerts = append(concerts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return concerts, nil
}

// GetByID returns a single published concert. ErrConcertNotFound is
// returned when no matching row exists (unknown id, draft or deleted).
func (r *ConcertRepo) GetByID(ctx context.Context, id string) (*model.Concert, error) {
	const q = `SELECT id, title, venue, concert_date, thumbnail_url, status, created_at, updated_at
	           FROM concerts
	           WHERE id = ? AND status = 'published' AND deleted_at IS NULL`
	var c model.Concert
	var venue, thumb sql.NullString
	var date sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&c.ID, &c.Title, &venue, &date, &thumb, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConcertNotFound
		}
		return nil, err
	}
	if venue.Valid {
		v := venue.String
		c.Venue = &v
	}
	if date.Valid {
		d := date.Time
		c.ConcertDate = &d
	}
	if thumb.Valid {
		t := thumb.String
		c.ThumbnailURL = &t
	}
	return &c, nil
}

// GetByIDAny returns a concert row regardless of publication status or
// soft deletion. Reservation views must keep working even after the
// concert is unpublished.
func (r *ConcertRepo) GetByIDAny(ctx context.Context, id string) (*model.Concert, error) {
	const q = `SELECT id, title, venue, concert_date, thumbnail_url, status, created_at, updated_at
	           FROM concerts
	           WHERE id = ?`
	var c model.Concert
	var venue, thumb sql.NullString
	var date sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&c.ID, &c.Title, &venue, &date, &thumb, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConcertNotFound
		}
		return nil, err
	}
	if venue.Valid {
		v := venue.String
		c.Venue = &v
	}
	if date.Valid {
		d := date.Time
		c.ConcertDate = &d
	}
	if thumb.Valid {
		t := thumb.String
		c.ThumbnailURL = &t
	}
	return &c, nil
}

// ListTiers returns the seat tiers of a concert ordered by price
// ascending. Deleted tiers are excluded.
func (r *ConcertRepo) ListTiers(ctx context.Context, concertID string) ([]model.SeatTier, error) {
	const q = `SELECT id, concert_id, label, price
	           FROM concert_seat_tiers
	           WHERE concert_id = ? AND deleted_at IS NULL
	           ORDER BY price ASC`
	rows, err := r.db.QueryContext(ctx, q, concertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make([]model.SeatTier, 0)
	for rows.Next() {
		var t model.SeatTier
		if err := rows.Scan(&t.ID, &t.ConcertID, &t.Label, &t.Price); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tiers, nil
}

// Package repository contains data access logic separated from HTTP handlers.
// This file defines the hotel repository: CRUD, owner-scoped lookups and
// the filtered listings used by public search and dashboards.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// liveStatuses are the booking states that still occupy a room.
const liveStatuses = `'pending','confirmed','checked_in'`

// HotelRepo encapsulates all database queries related to hotels.  It
// depends on a sql.DB connection which should be configured elsewhere.
type HotelRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewHotelRepo constructs a HotelRepo with the provided DB handle.
func NewHotelRepo(db *sql.DB) *HotelRepo {
	return &HotelRepo{db: db}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanHotel(s rowScanner) (*model.Hotel, error) {
	h := new(model.Hotel)
	err := s.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &h.City, &h.Country, &h.Address,
		&h.StarRating, &h.Rating, &h.MainImage, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Create inserts a new hotel.  On success the hotel's ID and timestamps
// are populated from the stored row.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) error {
	const q = `INSERT INTO hotels (owner_id, name, description, city, country, address, star_rating, main_image, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, h.OwnerID, h.Name, h.Description, h.City, h.Country,
		h.Address, h.StarRating, h.MainImage, h.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*h = *stored
	return nil
}

// GetByID fetches a hotel by its ID regardless of owner or active flag.
// It returns ErrHotelNotFound if no row is found.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (*model.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, "SELECT "+hotelColumns+" FROM hotels WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}
	return h, nil
}

// GetByIDAndOwner fetches a hotel by id but only if it belongs to the
// specified owner.  If the hotel doesn't exist or is owned by someone
// else, ErrHotelNotFound is returned.
func (r *HotelRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Hotel, error) {
	h, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.OwnerID != ownerID {
		return nil, ErrHotelNotFound
	}
	return h, nil
}

// List returns the hotels matching q.
func (r *HotelRepo) List(ctx context.Context, q HotelQuery) ([]model.Hotel, error) {
	sqlStr, args := q.build()
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the editable fields of h.  The owner is part of the WHERE
// clause; ErrHotelNotFound is returned when no hotel of that owner exists.
func (r *HotelRepo) Update(ctx context.Context, h *model.Hotel) error {
	const q = `UPDATE hotels
	           SET name = ?, description = ?, city = ?, country = ?, address = ?,
	               star_rating = ?, main_image = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, h.Name, h.Description, h.City, h.Country, h.Address,
		h.StarRating, h.MainImage, h.IsActive, h.ID, h.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// zero rows also means "no column changed"
		_, err := r.GetByIDAndOwner(ctx, h.ID, h.OwnerID)
		return err
	}
	return nil
}

// SetActive toggles the public visibility of a hotel.  ownerID restricts
// the change to one owner; nil means any hotel (admin).
func (r *HotelRepo) SetActive(ctx context.Context, id uint64, ownerID *uint64, active bool) error {
	q := `UPDATE hotels SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	args := []any{active, id}
	if ownerID != nil {
		q += ` AND owner_id = ?`
		args = append(args, *ownerID)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows when the flag already had this
		// value, so tell "missing" apart from "unchanged".
		h, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if ownerID != nil && h.OwnerID != *ownerID {
			return ErrForbidden
		}
	}
	return nil
}

// DeleteByIDAndOwner removes a hotel belonging to ownerID together with
// its rooms, bookings and reviews.  It returns ErrHotelNotFound when the
// hotel does not exist, ErrForbidden when it belongs to another owner and
// ErrConflict while live bookings remain.
func (r *HotelRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	return r.delete(ctx, id, &ownerID)
}

// Delete removes any hotel (admin override).  Live bookings still block
// the deletion.
func (r *HotelRepo) Delete(ctx context.Context, id uint64) error {
	return r.delete(ctx, id, nil)
}

func (r *HotelRepo) delete(ctx context.Context, id uint64, ownerID *uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	// Verify hotel exists and ownership
	var dbOwnerID uint64
	if err = tx.QueryRowContext(ctx, `SELECT owner_id FROM hotels WHERE id = ? FOR UPDATE`, id).Scan(&dbOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrHotelNotFound
		}
		return err
	}
	if ownerID != nil && dbOwnerID != *ownerID {
		return ErrForbidden
	}
	var live int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE hotel_id = ? AND status IN (`+liveStatuses+`)`, id).Scan(&live); err != nil {
		return err
	}
	if live > 0 {
		return ErrConflict
	}
	for _, q := range []string{
		`DELETE FROM reviews WHERE hotel_id = ?`,
		`DELETE FROM bookings WHERE hotel_id = ?`,
		`DELETE FROM rooms WHERE hotel_id = ?`,
		`DELETE FROM hotels WHERE id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// RoomRepo provides CRUD operations for rooms.  Ownership of a room is
// derived from its hotel.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, hotel_id, title, description, price_per_night_cents, max_guests,
	bed_type, room_size, is_available, created_at, updated_at`

func scanRoom(s rowScanner) (*model.Room, error) {
	var (
		rm      model.Room
		bedType sql.NullString
		size    sql.NullInt64
	)
	if err := s.Scan(&rm.ID, &rm.HotelID, &rm.Title, &rm.Description, &rm.PricePerNightCents,
		&rm.MaxGuests, &bedType, &size, &rm.IsAvailable, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, err
	}
	if bedType.Valid {
		bt := bedType.String
		rm.BedType = &bt
	}
	if size.Valid {
		sz := int(size.Int64)
		rm.RoomSize = &sz
	}
	return &rm, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// Create inserts a room and populates its ID and timestamps.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (hotel_id, title, description, price_per_night_cents, max_guests, bed_type, room_size, is_available)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.HotelID, rm.Title, rm.Description, rm.PricePerNightCents,
		rm.MaxGuests, nullString(rm.BedType), nullInt(rm.RoomSize), rm.IsAvailable)
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
	*rm = *stored
	return nil
}

// GetByID returns a room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// GetByIDAndOwner returns a room whose hotel belongs to ownerID.  A room
// of another owner yields ErrForbidden.
func (r *RoomRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Room, error) {
	rm, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var hotelOwner uint64
	if err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM hotels WHERE id = ?`, rm.HotelID).Scan(&hotelOwner); err != nil {
		return nil, err
	}
	if hotelOwner != ownerID {
		return nil, ErrForbidden
	}
	return rm, nil
}

// ListByHotel returns the rooms of a hotel ordered by price.  With
// availableOnly set, rooms switched off by the owner are skipped.
func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID uint64, availableOnly bool) ([]model.Room, error) {
	q := "SELECT " + roomColumns + " FROM rooms WHERE hotel_id = ?"
	if availableOnly {
		q += " AND is_available = 1"
	}
	q += " ORDER BY price_per_night_cents ASC, id ASC"
	rows, err := r.db.QueryContext(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the editable fields of rm.  It returns ErrRoomNotFound
// when the room does not exist.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	const q = `UPDATE rooms
	           SET title = ?, description = ?, price_per_night_cents = ?, max_guests = ?,
	               bed_type = ?, room_size = ?, is_available = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rm.Title, rm.Description, rm.PricePerNightCents, rm.MaxGuests,
		nullString(rm.BedType), nullInt(rm.RoomSize), rm.IsAvailable, rm.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, rm.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a room unless live bookings reference it, in which case
// ErrConflict is returned.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) (err error) {
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
	var live int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE room_id = ? AND status IN (`+liveStatuses+`)`, id).Scan(&live); err != nil {
		return err
	}
	if live > 0 {
		return ErrConflict
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM bookings WHERE room_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

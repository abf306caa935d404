package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// BookingRepo persists bookings.  All timestamp fields are assumed to be
// stored in UTC; check-in and check-out are DATE columns.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `b.id, b.reference, b.user_id, b.room_id, b.hotel_id, b.check_in, b.check_out,
	b.num_guests, b.total_price_cents, b.status, b.special_requests, b.created_at, b.updated_at`

// detailSelect joins the guest, room and hotel names used by dashboards.
const detailSelect = `SELECT ` + bookingColumns + `,
	u.full_name, u.email, r.title, h.name, h.city, h.country
	FROM bookings b
	JOIN users u  ON u.id = b.user_id
	JOIN rooms r  ON r.id = b.room_id
	JOIN hotels h ON h.id = b.hotel_id`

func scanBooking(s rowScanner, extra ...any) (*model.Booking, error) {
	var (
		b   model.Booking
		req sql.NullString
	)
	dest := []any{&b.ID, &b.Reference, &b.UserID, &b.RoomID, &b.HotelID, &b.CheckIn, &b.CheckOut,
		&b.NumGuests, &b.TotalPriceCents, &b.Status, &req, &b.CreatedAt, &b.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if req.Valid {
		sr := req.String
		b.SpecialRequests = &sr
	}
	return &b, nil
}

func scanDetail(s rowScanner) (*model.BookingDetail, error) {
	var d model.BookingDetail
	b, err := scanBooking(s, &d.GuestName, &d.GuestEmail, &d.RoomTitle, &d.HotelName, &d.City, &d.Country)
	if err != nil {
		return nil, err
	}
	d.Booking = *b
	return &d, nil
}

// Create inserts a booking in a single transaction.  The room row is
// locked so that two concurrent requests for the same dates cannot both
// pass the overlap check; ErrRoomBooked is returned when an existing live
// booking shares a night with the new stay.  The caller has already run
// booking.ValidateBookingRequest and priced the stay.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) (err error) {
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

	var available bool
	if err = tx.QueryRowContext(ctx, `SELECT is_available FROM rooms WHERE id = ? FOR UPDATE`, b.RoomID).Scan(&available); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	if !available {
		return booking.ErrRoomUnavailable
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT check_in, check_out FROM bookings WHERE room_id = ? AND status IN (`+liveStatuses+`)
		 AND check_in < ? AND check_out > ?`, b.RoomID,
		b.CheckOut.Format(booking.DateLayout), b.CheckIn.Format(booking.DateLayout))
	if err != nil {
		return err
	}
	for rows.Next() {
		var in, out time.Time
		if err = rows.Scan(&in, &out); err != nil {
			rows.Close()
			return err
		}
		if booking.Overlaps(in, out, b.CheckIn, b.CheckOut) {
			rows.Close()
			return ErrRoomBooked
		}
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	const q = `INSERT INTO bookings (reference, user_id, room_id, hotel_id, check_in, check_out,
	           num_guests, total_price_cents, status, special_requests)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.Reference, b.UserID, b.RoomID, b.HotelID,
		b.CheckIn.Format(booking.DateLayout), b.CheckOut.Format(booking.DateLayout),
		b.NumGuests, b.TotalPriceCents, b.Status, nullString(b.SpecialRequests))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := scanBooking(tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.id = ?", id))
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

// GetByID returns a booking with its display names or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	d, err := scanDetail(r.db.QueryRowContext(ctx, detailSelect+` WHERE b.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return d, nil
}

// BookingQuery scopes a booking listing.  Zero values disable a filter.
type BookingQuery struct {
	UserID  uint64 // bookings made by this client
	OwnerID uint64 // bookings of hotels owned by this owner
	HotelID uint64
	Status  model.BookingStatus
}

// List returns bookings matching q, newest first.
func (r *BookingRepo) List(ctx context.Context, q BookingQuery) ([]model.BookingDetail, error) {
	where := []string{}
	args := []any{}
	if q.UserID != 0 {
		where = append(where, "b.user_id = ?")
		args = append(args, q.UserID)
	}
	if q.OwnerID != 0 {
		where = append(where, "h.owner_id = ?")
		args = append(args, q.OwnerID)
	}
	if q.HotelID != 0 {
		where = append(where, "b.hotel_id = ?")
		args = append(args, q.HotelID)
	}
	if q.Status != "" {
		where = append(where, "b.status = ?")
		args = append(args, q.Status)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, detailSelect+` WHERE `+cond+` ORDER BY b.created_at DESC, b.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BookingDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// StatusChange describes who asks for which status on which booking.
type StatusChange struct {
	BookingID uint64
	Requested model.BookingStatus
	ActorID   uint64
	ActorRole model.Role
}

// UpdateStatus moves a booking to a new status.  The current row is
// locked, ownership is checked for clients (their own booking) and owners
// (a booking of their hotel), and booking.CheckTransition guards the
// move before anything is written.  It returns the previous status and
// the updated booking.
func (r *BookingRepo) UpdateStatus(ctx context.Context, ch StatusChange) (prev model.BookingStatus, out *model.BookingDetail, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var userID, hotelOwner uint64
	err = tx.QueryRowContext(ctx,
		`SELECT b.status, b.user_id, h.owner_id
		 FROM bookings b JOIN hotels h ON h.id = b.hotel_id
		 WHERE b.id = ? FOR UPDATE`, ch.BookingID).Scan(&prev, &userID, &hotelOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrBookingNotFound
		}
		return "", nil, err
	}
	switch ch.ActorRole {
	case model.RoleClient:
		if userID != ch.ActorID {
			return "", nil, ErrForbidden
		}
	case model.RoleOwner:
		if hotelOwner != ch.ActorID {
			return "", nil, ErrForbidden
		}
	case model.RoleAdmin:
	default:
		return "", nil, ErrForbidden
	}
	if err = booking.CheckTransition(prev, ch.Requested, ch.ActorRole); err != nil {
		return "", nil, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		ch.Requested, ch.BookingID, prev); err != nil {
		return "", nil, err
	}
	out, err = scanDetail(tx.QueryRowContext(ctx, detailSelect+` WHERE b.id = ?`, ch.BookingID))
	if err != nil {
		return "", nil, err
	}
	return prev, out, nil
}

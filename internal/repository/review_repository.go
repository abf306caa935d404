package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// ReviewRepo stores guest reviews and derives the aggregate hotel rating
// from them.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create stores a review for a completed booking of the reviewer.  The
// hotel is taken from the booking.  ErrBookingNotFound, ErrForbidden and
// ErrNotReviewable describe why a review was refused.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	if rv.BookingID == nil {
		return ErrNotReviewable
	}
	var (
		userID, hotelID uint64
		status          model.BookingStatus
	)
	err := r.db.QueryRowContext(ctx, `SELECT user_id, hotel_id, status FROM bookings WHERE id = ?`, *rv.BookingID).
		Scan(&userID, &hotelID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		return err
	}
	if userID != rv.UserID {
		return ErrForbidden
	}
	if status != model.StatusCompleted {
		return ErrNotReviewable
	}
	rv.HotelID = hotelID

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (user_id, hotel_id, booking_id, rating, comment) VALUES (?, ?, ?, ?, ?)`,
		rv.UserID, rv.HotelID, *rv.BookingID, rv.Rating, nullString(rv.Comment))
	if err != nil {
		if isDuplicate(err) {
			return ErrNotReviewable
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM reviews WHERE id = ?`, rv.ID).
		Scan(&rv.CreatedAt, &rv.UpdatedAt)
}

// ListByHotel returns the reviews of a hotel, newest first.
func (r *ReviewRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, hotel_id, booking_id, rating, comment, created_at, updated_at
		 FROM reviews WHERE hotel_id = ? ORDER BY created_at DESC, id DESC`, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		var (
			rv        model.Review
			bookingID sql.NullInt64
			comment   sql.NullString
		)
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.HotelID, &bookingID, &rv.Rating, &comment,
			&rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		if bookingID.Valid {
			id := uint64(bookingID.Int64)
			rv.BookingID = &id
		}
		if comment.Valid {
			c := comment.String
			rv.Comment = &c
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// RecomputeHotelRatings sets every hotel's rating to the average of its
// reviews, rounded to two decimals, or 0 when it has none.  It returns the
// number of hotels whose rating changed.
func (r *ReviewRepo) RecomputeHotelRatings(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE hotels h
		 LEFT JOIN (SELECT hotel_id, ROUND(AVG(rating), 2) AS avg_rating FROM reviews GROUP BY hotel_id) agg
		        ON agg.hotel_id = h.id
		 SET h.rating = COALESCE(agg.avg_rating, 0)
		 WHERE h.rating <> COALESCE(agg.avg_rating, 0)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

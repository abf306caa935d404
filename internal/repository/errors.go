// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation
// cannot proceed due to existing dependent records.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a room
// that still has live bookings. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

var (
	ErrHotelNotFound   = errors.New("hotel not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrAmenityExists   = errors.New("amenity already exists")

	// ErrRoomBooked means another live booking already holds the room
	// for at least one night of the requested stay.
	ErrRoomBooked = errors.New("room already booked for these dates")

	// ErrNotReviewable means the user has no completed stay to review,
	// or has already reviewed it.
	ErrNotReviewable = errors.New("booking cannot be reviewed")
)

// isDuplicate reports whether err is a MySQL duplicate key error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}

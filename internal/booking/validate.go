package booking

import (
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// ValidateBookingRequest checks a booking request against the room before
// anything is written.  An unavailable room is rejected whatever the dates
// and guests are; the guest count is checked next and the date range last.
// A nil result means the request may be submitted.
func ValidateBookingRequest(checkIn, checkOut time.Time, guestCount int, room model.Room) error {
	if !room.IsAvailable {
		return newError(ErrRoomUnavailable, "room %d is not available for booking", room.ID)
	}
	if guestCount < 1 {
		return newError(ErrInvalidGuestCount, "at least one guest is required")
	}
	if guestCount > room.MaxGuests {
		return newError(ErrGuestCountExceeded, "maximum %d guests allowed for this room", room.MaxGuests)
	}
	if ComputeNights(checkIn, checkOut) < 1 || !checkOut.After(checkIn) {
		return newError(ErrInvalidDateRange, "check-out date must be after check-in date")
	}
	return nil
}

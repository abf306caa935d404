package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func TestValidateBookingRequest(t *testing.T) {
	room := model.Room{ID: 7, PricePerNightCents: 12000, MaxGuests: 2, IsAvailable: true}
	closed := room
	closed.IsAvailable = false

	tests := []struct {
		name     string
		room     model.Room
		checkIn  string
		checkOut string
		guests   int
		wantErr  error
	}{
		{name: "valid at capacity", room: room, checkIn: "2024-06-01", checkOut: "2024-06-04", guests: 2},
		{name: "valid single guest", room: room, checkIn: "2024-06-01", checkOut: "2024-06-02", guests: 1},
		{name: "one guest too many", room: room, checkIn: "2024-06-01", checkOut: "2024-06-04", guests: 3, wantErr: ErrGuestCountExceeded},
		{name: "no guests", room: room, checkIn: "2024-06-01", checkOut: "2024-06-04", guests: 0, wantErr: ErrInvalidGuestCount},
		{name: "same day", room: room, checkIn: "2024-06-01", checkOut: "2024-06-01", guests: 1, wantErr: ErrInvalidDateRange},
		{name: "check-out before check-in", room: room, checkIn: "2024-06-04", checkOut: "2024-06-01", guests: 1, wantErr: ErrInvalidDateRange},
		{name: "unavailable room", room: closed, checkIn: "2024-06-01", checkOut: "2024-06-04", guests: 1, wantErr: ErrRoomUnavailable},
		{name: "unavailable beats bad dates", room: closed, checkIn: "2024-06-01", checkOut: "2024-06-01", guests: 1, wantErr: ErrRoomUnavailable},
		{name: "unavailable beats guests", room: closed, checkIn: "2024-06-01", checkOut: "2024-06-04", guests: 9, wantErr: ErrRoomUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBookingRequest(mustDate(t, tt.checkIn), mustDate(t, tt.checkOut), tt.guests, tt.room)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantErr.Error(), verr.Code())
			assert.NotEmpty(t, verr.Message)
		})
	}
}

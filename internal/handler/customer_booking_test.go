package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

var now = time.Date(2030, 5, 15, 9, 30, 0, 0, time.UTC)

func TestCustomerHandler_CreateBooking(t *testing.T) {
	f := newFixture()
	body := map[string]any{"room_id": 20, "check_in": "2030-07-01", "check_out": "2030-07-04", "num_guests": 2}
	c, rec := request(t, http.MethodPost, "/v1/bookings", body, clientSession)

	require.NoError(t, f.customer(now).CreateBooking(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	got := decode(t, rec)
	assert.EqualValues(t, 36000, got["total_price_cents"])
	assert.Equal(t, "360.00", got["total_price_display"])
	assert.EqualValues(t, 3, got["nights"])
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, "Hotel Lumière", got["hotel_name"])
	assert.NotEmpty(t, got["reference"])
	assert.Contains(t, got["allowed_statuses"], "canceled")

	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, queue.EventBookingCreated, ev.Type)
	assert.Equal(t, clientID, ev.UserID)
	assert.Equal(t, "2030-07-01", ev.CheckIn)
}

func TestCustomerHandler_CreateBooking_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		createErr  error
		wantStatus int
		wantError  string
	}{
		{
			name:       "guest count exceeded",
			body:       map[string]any{"room_id": 20, "check_in": "2030-07-01", "check_out": "2030-07-04", "num_guests": 3},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "guest_count_exceeded",
		},
		{
			name:       "zero guests",
			body:       map[string]any{"room_id": 20, "check_in": "2030-07-01", "check_out": "2030-07-04"},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "invalid_guest_count",
		},
		{
			name:       "check-out before check-in",
			body:       map[string]any{"room_id": 20, "check_in": "2030-07-04", "check_out": "2030-07-01", "num_guests": 1},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "invalid_date_range",
		},
		{
			name:       "check-in in the past",
			body:       map[string]any{"room_id": 20, "check_in": "2030-05-14", "check_out": "2030-05-16", "num_guests": 1},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "invalid_date_range",
		},
		{
			name:       "room switched off",
			body:       map[string]any{"room_id": 21, "check_in": "2030-07-01", "check_out": "2030-07-04", "num_guests": 1},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "room_unavailable",
		},
		{
			name:       "room of inactive hotel",
			body:       map[string]any{"room_id": 22, "check_in": "2030-07-01", "check_out": "2030-07-04", "num_guests": 1},
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "unknown room",
			body:       map[string]any{"room_id": 999, "check_in": "2030-07-01", "check_out": "2030-07-04", "num_guests": 1},
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "overlapping stay",
			body:       map[string]any{"room_id": 20, "check_in": "2030-06-02", "check_out": "2030-06-05", "num_guests": 1},
			createErr:  repository.ErrRoomBooked,
			wantStatus: http.StatusConflict,
			wantError:  "room_booked",
		},
		{
			name:       "missing room id",
			body:       map[string]any{"check_in": "2030-07-01", "check_out": "2030-07-04", "num_guests": 1},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_request",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.bookings.createErr = tt.createErr
			before := len(f.bookings.items)
			c, rec := request(t, http.MethodPost, "/v1/bookings", tt.body, clientSession)

			require.NoError(t, f.customer(now).CreateBooking(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decode(t, rec)["error"])
			assert.Len(t, f.bookings.items, before)
			assert.Empty(t, f.pub.events)
		})
	}
}

func TestCustomerHandler_CreateBooking_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.pub.err = errors.New("broker down")
	body := map[string]any{"room_id": 20, "check_in": "2030-07-01", "check_out": "2030-07-02", "num_guests": 1}
	c, rec := request(t, http.MethodPost, "/v1/bookings", body, clientSession)

	require.NoError(t, f.customer(now).CreateBooking(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCustomerHandler_CreateBooking_NoSession(t *testing.T) {
	f := newFixture()
	c, rec := request(t, http.MethodPost, "/v1/bookings", map[string]any{}, nil)

	require.NoError(t, f.customer(now).CreateBooking(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerHandler_MyBookings(t *testing.T) {
	tests := []struct {
		filter  string
		wantIDs []float64
	}{
		{"", []float64{30, 31}},
		{"all", []float64{30, 31}},
		{"upcoming", []float64{30}},
		{"past", []float64{31}},
	}
	for _, tt := range tests {
		t.Run("filter="+tt.filter, func(t *testing.T) {
			f := newFixture()
			c, rec := request(t, http.MethodGet, "/v1/my-bookings?filter="+tt.filter, nil, clientSession)

			require.NoError(t, f.customer(now).MyBookings(c))
			require.Equal(t, http.StatusOK, rec.Code)
			ids := []float64{}
			for _, it := range decode(t, rec)["items"].([]any) {
				ids = append(ids, it.(map[string]any)["id"].(float64))
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, clientID, f.bookings.queries[0].UserID)
		})
	}

	t.Run("unknown filter", func(t *testing.T) {
		f := newFixture()
		c, rec := request(t, http.MethodGet, "/v1/my-bookings?filter=soon", nil, clientSession)

		require.NoError(t, f.customer(now).MyBookings(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCustomerHandler_GetBooking(t *testing.T) {
	f := newFixture()

	c, rec := request(t, http.MethodGet, "/", nil, clientSession, "id", "30")
	require.NoError(t, f.customer(now).GetBooking(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "360.00", decode(t, rec)["total_price_display"])

	c, rec = request(t, http.MethodGet, "/", nil, clientSession, "id", "32")
	require.NoError(t, f.customer(now).GetBooking(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = request(t, http.MethodGet, "/", nil, clientSession, "id", "404")
	require.NoError(t, f.customer(now).GetBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerHandler_CancelBooking(t *testing.T) {
	t.Run("pending booking", func(t *testing.T) {
		f := newFixture()
		c, rec := request(t, http.MethodPost, "/", nil, clientSession, "id", "30")

		require.NoError(t, f.customer(now).CancelBooking(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "canceled", decode(t, rec)["status"])
		assert.Equal(t, model.StatusCanceled, f.bookings.items[30].Status)

		require.Len(t, f.pub.events, 1)
		assert.Equal(t, queue.EventStatusChanged, f.pub.events[0].Type)
		assert.Equal(t, "pending", f.pub.events[0].PreviousStatus)
	})

	t.Run("completed booking cannot be canceled", func(t *testing.T) {
		f := newFixture()
		c, rec := request(t, http.MethodPost, "/", nil, clientSession, "id", "31")

		require.NoError(t, f.customer(now).CancelBooking(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "invalid_transition", decode(t, rec)["error"])
		assert.Equal(t, model.StatusCompleted, f.bookings.items[31].Status)
		assert.Empty(t, f.pub.events)
	})

	t.Run("another guest's booking", func(t *testing.T) {
		f := newFixture()
		c, rec := request(t, http.MethodPost, "/", nil, clientSession, "id", "32")

		require.NoError(t, f.customer(now).CancelBooking(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestCustomerHandler_CreateReview(t *testing.T) {
	t.Run("completed stay", func(t *testing.T) {
		f := newFixture()
		f.reviews.createFunc = func(rv *model.Review) error {
			rv.HotelID = 11
			return nil
		}
		c, rec := request(t, http.MethodPost, "/v1/reviews", map[string]any{"booking_id": 31, "rating": 5}, clientSession)

		require.NoError(t, f.customer(now).CreateReview(c))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, f.reviews.items, 1)
		assert.Equal(t, clientID, f.reviews.items[0].UserID)
		assert.EqualValues(t, 11, decode(t, rec)["hotel_id"])
	})

	t.Run("not reviewable", func(t *testing.T) {
		f := newFixture()
		f.reviews.createFunc = func(*model.Review) error { return repository.ErrNotReviewable }
		c, rec := request(t, http.MethodPost, "/v1/reviews", map[string]any{"booking_id": 30, "rating": 4}, clientSession)

		require.NoError(t, f.customer(now).CreateReview(c))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "not_reviewable", decode(t, rec)["error"])
	})

	t.Run("rating out of range", func(t *testing.T) {
		f := newFixture()
		c, rec := request(t, http.MethodPost, "/v1/reviews", map[string]any{"booking_id": 31, "rating": 6}, clientSession)

		require.NoError(t, f.customer(now).CreateReview(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

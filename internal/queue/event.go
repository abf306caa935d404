// Package queue defines the booking event payload exchanged over RabbitMQ
// and the consumer that turns those events into guest notifications.
package queue

import (
	"fmt"
	"time"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// BookingQueue is the durable queue carrying BookingEvent messages.
const BookingQueue = "booking.events"

// Event types.
const (
	EventBookingCreated = "booking.created"
	EventStatusChanged  = "booking.status_changed"
)

// BookingEvent is published when a booking is created or changes status.
// It carries enough for a consumer to notify the guest without querying
// the bookings table.
type BookingEvent struct {
	Type            string `json:"type"`
	BookingID       uint64 `json:"booking_id"`
	Reference       string `json:"reference"`
	UserID          uint64 `json:"user_id"`
	HotelID         uint64 `json:"hotel_id"`
	HotelName       string `json:"hotel_name"`
	RoomID          uint64 `json:"room_id"`
	RoomTitle       string `json:"room_title"`
	GuestName       string `json:"guest_name"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Nights          int    `json:"nights"`
	TotalPriceCents int64  `json:"total_price_cents"`
	Status          string `json:"status"`
	PreviousStatus  string `json:"previous_status,omitempty"`
	OccurredAt      string `json:"occurred_at"`
}

// NewBookingEvent builds an event from a stored booking.  prev is empty
// for creations.
func NewBookingEvent(kind string, d model.BookingDetail, prev model.BookingStatus) BookingEvent {
	return BookingEvent{
		Type:            kind,
		BookingID:       d.ID,
		Reference:       d.Reference,
		UserID:          d.UserID,
		HotelID:         d.HotelID,
		HotelName:       d.HotelName,
		RoomID:          d.RoomID,
		RoomTitle:       d.RoomTitle,
		GuestName:       d.GuestName,
		CheckIn:         d.CheckIn.Format(booking.DateLayout),
		CheckOut:        d.CheckOut.Format(booking.DateLayout),
		Nights:          booking.ComputeNights(d.CheckIn, d.CheckOut),
		TotalPriceCents: d.TotalPriceCents,
		Status:          string(d.Status),
		PreviousStatus:  string(prev),
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	}
}

// Message renders the text sent to the guest.
func (e BookingEvent) Message() string {
	switch e.Type {
	case EventBookingCreated:
		return fmt.Sprintf("Booking %s received: %s, %s, %s to %s (%d nights), total %s. Status: %s.",
			shortRef(e.Reference), e.HotelName, e.RoomTitle, e.CheckIn, e.CheckOut, e.Nights,
			booking.FormatPrice(e.TotalPriceCents), e.Status)
	default:
		return fmt.Sprintf("Booking %s at %s (%s to %s) is now %s.",
			shortRef(e.Reference), e.HotelName, e.CheckIn, e.CheckOut, e.Status)
	}
}

func shortRef(ref string) string {
	if len(ref) > 8 {
		return ref[:8]
	}
	return ref
}

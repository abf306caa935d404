package model

import "time"

// BookingStatus is the lifecycle state of a booking.  The allowed moves
// between states live in the booking package.
type BookingStatus string

const (
    StatusPending   BookingStatus = "pending"
    StatusConfirmed BookingStatus = "confirmed"
    StatusCheckedIn BookingStatus = "checked_in"
    StatusCompleted BookingStatus = "completed"
    StatusCanceled  BookingStatus = "canceled"
)

// Booking records a client's stay in a specific room.  TotalPriceCents is
// fixed at creation time from the room's nightly rate and is never
// recomputed when the room price later changes.
//
// Fields:
//  ID              – primary key identifier.
//  Reference       – public booking code (UUID) shown to guests.
//  UserID          – client who made the booking.
//  RoomID, HotelID – booked room and its hotel.
//  CheckIn         – arrival date (UTC midnight).
//  CheckOut        – departure date, strictly after CheckIn.
//  NumGuests       – guests staying, at most the room's MaxGuests.
//  TotalPriceCents – nights × nightly rate at creation.
//  Status          – lifecycle state.
//  SpecialRequests – optional free text.
type Booking struct {
    ID              uint64        `json:"id"`                         // bookings.id
    Reference       string        `json:"reference"`                  // bookings.reference
    UserID          uint64        `json:"user_id"`                    // bookings.user_id
    RoomID          uint64        `json:"room_id"`                    // bookings.room_id
    HotelID         uint64        `json:"hotel_id"`                   // bookings.hotel_id
    CheckIn         time.Time     `json:"check_in"`                   // bookings.check_in
    CheckOut        time.Time     `json:"check_out"`                  // bookings.check_out
    NumGuests       int           `json:"num_guests"`                 // bookings.num_guests
    TotalPriceCents int64         `json:"total_price_cents"`          // bookings.total_price_cents
    Status          BookingStatus `json:"status"`                     // bookings.status
    SpecialRequests *string       `json:"special_requests,omitempty"` // bookings.special_requests
    CreatedAt       time.Time     `json:"created_at"`                 // bookings.created_at
    UpdatedAt       time.Time     `json:"updated_at"`                 // bookings.updated_at
}

// BookingDetail is a booking joined with the names a dashboard displays
// next to it.
type BookingDetail struct {
    Booking
    GuestName  string `json:"guest_name"`
    GuestEmail string `json:"guest_email"`
    RoomTitle  string `json:"room_title"`
    HotelName  string `json:"hotel_name"`
    City       string `json:"city"`
    Country    string `json:"country"`
}

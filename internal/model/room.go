package model

import "time"

// Room is a bookable unit of a hotel.  Prices are kept in cents so that
// multiplying by a night count never loses precision.
//
// Fields:
//  ID                 – primary key identifier.
//  HotelID            – hotel the room belongs to.
//  PricePerNightCents – nightly rate in cents, always positive.
//  MaxGuests          – capacity, at least 1.
//  IsAvailable        – owners switch this off to stop new bookings.
type Room struct {
    ID                 uint64    `json:"id"`                   // rooms.id
    HotelID            uint64    `json:"hotel_id"`             // rooms.hotel_id
    Title              string    `json:"title"`                // rooms.title
    Description        string    `json:"description"`          // rooms.description
    PricePerNightCents int64     `json:"price_per_night_cents"` // rooms.price_per_night_cents
    MaxGuests          int       `json:"max_guests"`           // rooms.max_guests
    BedType            *string   `json:"bed_type,omitempty"`   // rooms.bed_type
    RoomSize           *int      `json:"room_size,omitempty"`  // rooms.room_size (m²)
    IsAvailable        bool      `json:"is_available"`         // rooms.is_available
    CreatedAt          time.Time `json:"created_at"`           // rooms.created_at
    UpdatedAt          time.Time `json:"updated_at"`           // rooms.updated_at
}

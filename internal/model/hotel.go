package model

import "time"

// Hotel represents a property listed by an owner.  This struct
// corresponds to a row in the `hotels` table.  Inactive hotels stay
// visible to their owner and to admins but are excluded from public
// search.
//
// Fields:
//  ID         – primary key identifier.
//  OwnerID    – user ID of the hotel owner.
//  Name       – display name.
//  City, Country, Address – location.
//  StarRating – official category, 1 to 5.
//  Rating     – aggregate guest rating, 0 to 5, recomputed from reviews.
//  IsActive   – whether the hotel appears in public listings.
type Hotel struct {
    ID          uint64    `json:"id"`          // hotels.id
    OwnerID     uint64    `json:"owner_id"`    // hotels.owner_id
    Name        string    `json:"name"`        // hotels.name
    Description string    `json:"description"` // hotels.description
    City        string    `json:"city"`        // hotels.city
    Country     string    `json:"country"`     // hotels.country
    Address     string    `json:"address"`     // hotels.address
    StarRating  int       `json:"star_rating"` // hotels.star_rating
    Rating      float64   `json:"rating"`      // hotels.rating
    MainImage   string    `json:"main_image"`  // hotels.main_image
    IsActive    bool      `json:"is_active"`   // hotels.is_active
    CreatedAt   time.Time `json:"created_at"`  // hotels.created_at
    UpdatedAt   time.Time `json:"updated_at"`  // hotels.updated_at
}

// Amenity is a facility that can be advertised by hotels.
type Amenity struct {
    ID        uint64    `json:"id"`                 // amenities.id
    Name      string    `json:"name"`               // amenities.name
    Icon      *string   `json:"icon,omitempty"`     // amenities.icon
    Category  *string   `json:"category,omitempty"` // amenities.category
    CreatedAt time.Time `json:"created_at"`         // amenities.created_at
}

// Review is a guest's rating of a hotel after a completed stay.
type Review struct {
    ID        uint64    `json:"id"`                   // reviews.id
    UserID    uint64    `json:"user_id"`              // reviews.user_id
    HotelID   uint64    `json:"hotel_id"`             // reviews.hotel_id
    BookingID *uint64   `json:"booking_id,omitempty"` // reviews.booking_id
    Rating    int       `json:"rating"`               // reviews.rating (1-5)
    Comment   *string   `json:"comment,omitempty"`    // reviews.comment
    CreatedAt time.Time `json:"created_at"`           // reviews.created_at
    UpdatedAt time.Time `json:"updated_at"`           // reviews.updated_at
}

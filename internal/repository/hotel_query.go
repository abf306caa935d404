package repository

import (
	"strings"
)

// HotelQuery composes the filters, order and limit of a hotel listing.
// Zero values disable the corresponding filter.
type HotelQuery struct {
	OwnerID    uint64  // only hotels of this owner
	ActiveOnly bool    // hide inactive hotels
	MinRating  float64 // inclusive lower bound on the guest rating
	StarRating int     // exact star category, 0 means any
	OrderBy    string  // "rating" (desc), "name" (asc) or "created" (desc, default)
	Limit      int     // maximum rows, 0 means no limit
}

const hotelColumns = `id, owner_id, name, description, city, country, address,
	star_rating, rating, main_image, is_active, created_at, updated_at`

// build renders the query as SQL with positional arguments.
func (q HotelQuery) build() (string, []any) {
	where := []string{}
	args := []any{}

	if q.OwnerID != 0 {
		where = append(where, "owner_id = ?")
		args = append(args, q.OwnerID)
	}
	if q.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	if q.MinRating > 0 {
		where = append(where, "rating >= ?")
		args = append(args, q.MinRating)
	}
	if q.StarRating > 0 {
		where = append(where, "star_rating = ?")
		args = append(args, q.StarRating)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	order := "created_at DESC, id DESC"
	switch strings.ToLower(q.OrderBy) {
	case "rating":
		order = "rating DESC, id ASC"
	case "name":
		order = "name ASC, id ASC"
	}

	sqlStr := "SELECT " + hotelColumns + " FROM hotels WHERE " + cond + " ORDER BY " + order
	if q.Limit > 0 {
		sqlStr += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return sqlStr, args
}

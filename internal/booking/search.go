package booking

import (
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// Sort orders accepted by FilterHotels.
const (
	SortByRating = "rating"
	SortByName   = "name"
)

// HotelFilter describes the public hotel search form.  Zero values mean
// "no filter": an empty query matches everything, MinRating 0 accepts any
// rating and StarRating 0 accepts any category.
type HotelFilter struct {
	Query      string
	MinRating  float64
	StarRating int
	SortBy     string
}

// Matches reports whether h passes the text, rating and category filters.
func (f HotelFilter) Matches(h model.Hotel) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(h.Name), q) &&
			!strings.Contains(strings.ToLower(h.City), q) &&
			!strings.Contains(strings.ToLower(h.Country), q) {
			return false
		}
	}
	if h.Rating < f.MinRating {
		return false
	}
	if f.StarRating != 0 && h.StarRating != f.StarRating {
		return false
	}
	return true
}

// FilterHotels applies f to an already loaded list and sorts the result by
// rating descending (default) or name ascending.  Ties keep their original
// order.  The input slice is not modified.
func FilterHotels(hotels []model.Hotel, f HotelFilter) []model.Hotel {
	out := make([]model.Hotel, 0, len(hotels))
	for _, h := range hotels {
		if f.Matches(h) {
			out = append(out, h)
		}
	}
	switch f.SortBy {
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	return out
}

// Stats is the aggregate shown on owner and admin dashboards.
type Stats struct {
	TotalBookings int                         `json:"total_bookings"`
	RevenueCents  int64                       `json:"revenue_cents"`
	ByStatus      map[model.BookingStatus]int `json:"by_status"`
}

// Summarize counts bookings per status and sums the revenue of every
// booking that was not canceled.
func Summarize(bookings []model.Booking) Stats {
	s := Stats{TotalBookings: len(bookings), ByStatus: make(map[model.BookingStatus]int, len(statuses))}
	for _, st := range statuses {
		s.ByStatus[st] = 0
	}
	for _, b := range bookings {
		s.ByStatus[b.Status]++
		if b.Status != model.StatusCanceled {
			s.RevenueCents += b.TotalPriceCents
		}
	}
	return s
}

// IsUpcoming reports whether b is a live stay starting today or later.
func IsUpcoming(b model.Booking, today time.Time) bool {
	return !b.CheckIn.Before(truncateDay(today)) && b.Status != model.StatusCanceled
}

// IsPast reports whether b ended before today or has been completed.
func IsPast(b model.Booking, today time.Time) bool {
	return b.CheckOut.Before(truncateDay(today)) || b.Status == model.StatusCompleted
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

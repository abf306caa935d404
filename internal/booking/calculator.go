// Package booking holds the pure rules of a hotel stay: how many nights a
// date range covers, what it costs, whether a request can be accepted and
// which status changes each role may perform.  Nothing in this package
// performs I/O; handlers and repositories call it before writing.
package booking

import (
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

const day = 24 * time.Hour

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

// ComputeNights returns the number of nights between two dates as the
// ceiling of the absolute difference in days.  Out-of-order dates still
// give a non-negative count; a result below 1 means the range is not a
// valid stay.
func ComputeNights(checkIn, checkOut time.Time) int {
	diff := checkOut.Sub(checkIn)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// ComputeTotalPrice multiplies nights by the nightly rate.  Both the rate
// and the result are in cents, so the product is exact.
func ComputeTotalPrice(nights int, pricePerNightCents int64) int64 {
	return int64(nights) * pricePerNightCents
}

// FormatPrice renders cents as a decimal amount with two places.
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Quote is the price breakdown of a prospective stay.
type Quote struct {
	Nights             int   `json:"nights"`
	PricePerNightCents int64 `json:"price_per_night_cents"`
	TotalPriceCents    int64 `json:"total_price_cents"`
}

// TotalDisplay is the total formatted for presentation.
func (q Quote) TotalDisplay() string { return FormatPrice(q.TotalPriceCents) }

// QuoteStay computes the nights and total for a room over a date range.
func QuoteStay(checkIn, checkOut time.Time, room model.Room) Quote {
	n := ComputeNights(checkIn, checkOut)
	return Quote{
		Nights:             n,
		PricePerNightCents: room.PricePerNightCents,
		TotalPriceCents:    ComputeTotalPrice(n, room.PricePerNightCents),
	}
}

// Overlaps reports whether two half-open stays [aIn, aOut) and [bIn, bOut)
// share at least one night.  A guest checking out on the day another
// checks in does not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

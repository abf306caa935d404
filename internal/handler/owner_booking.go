package handler

// Owners see the bookings of their own hotels and move them through the
// lifecycle; the same status endpoint backs the admin override.

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// bookingQueryFrom reads the optional status and hotel_id filters.
func bookingQueryFrom(c echo.Context) (repository.BookingQuery, bool) {
	var q repository.BookingQuery
	if s := c.QueryParam("status"); s != "" {
		st, ok := booking.ParseStatus(s)
		if !ok {
			return q, false
		}
		q.Status = st
	}
	if s := c.QueryParam("hotel_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return q, false
		}
		q.HotelID = id
	}
	return q, true
}

func badFilter(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": "invalid status or hotel_id filter"})
}

// ListBookings handles GET /v1/owner/bookings.
func (h *OwnerHandler) ListBookings(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	q, ok := bookingQueryFrom(c)
	if !ok {
		return badFilter(c)
	}
	q.OwnerID = s.UserID

	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Bookings.List(ctx, q)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewsOf(items, s.Role)})
}

type statusReq struct {
	Status string `json:"status" validate:"required"`
}

// changeStatus applies a requested status on behalf of the caller.  The
// repository checks ownership and the transition table before writing.
func changeStatus(c echo.Context, store BookingStore, pub EventPublisher, log *slog.Logger) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req statusReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	// unknown values are left for the transition guard to reject
	requested, ok := booking.ParseStatus(req.Status)
	if !ok {
		requested = model.BookingStatus(req.Status)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	prev, d, err := store.UpdateStatus(ctx, repository.StatusChange{
		BookingID: id,
		Requested: requested,
		ActorID:   s.UserID,
		ActorRole: s.Role,
	})
	if err != nil {
		return respondError(c, log, err)
	}
	log.Info("booking status changed", "booking_id", id, "from", prev, "to", d.Status,
		"actor_id", s.UserID, "actor_role", s.Role)
	publish(c, pub, log, queue.NewBookingEvent(queue.EventStatusChanged, *d, prev))
	return c.JSON(http.StatusOK, viewOf(*d, s.Role))
}

// UpdateBookingStatus handles PATCH /v1/owner/bookings/:id/status.
func (h *OwnerHandler) UpdateBookingStatus(c echo.Context) error {
	return changeStatus(c, h.Bookings, h.Publisher, h.Log)
}

type hotelStats struct {
	HotelID uint64 `json:"hotel_id"`
	Name    string `json:"name"`
	booking.Stats
	RevenueDisplay string `json:"revenue_display"`
}

// Analytics handles GET /v1/owner/analytics: totals over all of the
// caller's hotels plus a breakdown per hotel.
func (h *OwnerHandler) Analytics(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	hotels, err := h.Hotels.List(ctx, repository.HotelQuery{OwnerID: s.UserID, OrderBy: "name"})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ds, err := h.Bookings.List(ctx, repository.BookingQuery{OwnerID: s.UserID})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	all := bookingsOf(ds)
	total := booking.Summarize(all)

	perHotel := make(map[uint64][]model.Booking, len(hotels))
	for _, b := range all {
		perHotel[b.HotelID] = append(perHotel[b.HotelID], b)
	}
	breakdown := make([]hotelStats, 0, len(hotels))
	for _, ht := range hotels {
		st := booking.Summarize(perHotel[ht.ID])
		breakdown = append(breakdown, hotelStats{HotelID: ht.ID, Name: ht.Name, Stats: st,
			RevenueDisplay: booking.FormatPrice(st.RevenueCents)})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"hotels":          len(hotels),
		"stats":           total,
		"revenue_display": booking.FormatPrice(total.RevenueCents),
		"by_hotel":        breakdown,
	})
}

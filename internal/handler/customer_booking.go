package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// CustomerHandler serves the client side of bookings and reviews.  All
// routes sit behind JWTAuth and RequireRole(client).
type CustomerHandler struct {
	Hotels    HotelStore
	Rooms     RoomStore
	Bookings  BookingStore
	Reviews   ReviewStore
	Publisher EventPublisher
	Log       *slog.Logger
	Now       func() time.Time
}

func NewCustomerHandler(h HotelStore, r RoomStore, b BookingStore, rv ReviewStore, pub EventPublisher, log *slog.Logger) *CustomerHandler {
	if h == nil || r == nil || b == nil || rv == nil {
		panic("nil store passed to NewCustomerHandler")
	}
	return &CustomerHandler{Hotels: h, Rooms: r, Bookings: b, Reviews: rv, Publisher: pub, Log: log, Now: time.Now}
}

type createBookingReq struct {
	RoomID          uint64  `json:"room_id" validate:"required"`
	CheckIn         string  `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string  `json:"check_out" validate:"required,datetime=2006-01-02"`
	NumGuests       int     `json:"num_guests"`
	SpecialRequests *string `json:"special_requests" validate:"omitempty,max=1000"`
}

// CreateBooking validates the request against the room, prices the stay
// and stores it as pending.
func (h *CustomerHandler) CreateBooking(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	var req createBookingReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	checkIn, _ := booking.ParseDate(req.CheckIn)
	checkOut, _ := booking.ParseDate(req.CheckOut)
	if checkIn.Before(today(h.Now())) {
		return respondError(c, h.Log, &booking.ValidationError{
			Kind:    booking.ErrInvalidDateRange,
			Message: "check-in date cannot be in the past",
		})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	hotel, err := h.Hotels.GetByID(ctx, room.HotelID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if !hotel.IsActive {
		return respondError(c, h.Log, repository.ErrRoomNotFound)
	}
	if err := booking.ValidateBookingRequest(checkIn, checkOut, req.NumGuests, *room); err != nil {
		return respondError(c, h.Log, err)
	}

	quote := booking.QuoteStay(checkIn, checkOut, *room)
	b := &model.Booking{
		Reference:       uuid.NewString(),
		UserID:          s.UserID,
		RoomID:          room.ID,
		HotelID:         room.HotelID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		NumGuests:       req.NumGuests,
		TotalPriceCents: quote.TotalPriceCents,
		Status:          model.StatusPending,
		SpecialRequests: req.SpecialRequests,
	}
	if err := h.Bookings.Create(ctx, b); err != nil {
		return respondError(c, h.Log, err)
	}
	d, err := h.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("booking created", "booking_id", d.ID, "user_id", s.UserID, "room_id", room.ID,
		"nights", quote.Nights, "total_cents", d.TotalPriceCents)
	publish(c, h.Publisher, h.Log, queue.NewBookingEvent(queue.EventBookingCreated, *d, ""))
	return c.JSON(http.StatusCreated, viewOf(*d, s.Role))
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MyBookings lists the caller's bookings.  filter=upcoming|past narrows
// the list the way the "My bookings" tabs do.
func (h *CustomerHandler) MyBookings(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	filter := c.QueryParam("filter")
	switch filter {
	case "", "all", "upcoming", "past":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": "filter must be all, upcoming or past"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	all, err := h.Bookings.List(ctx, repository.BookingQuery{UserID: s.UserID})
	if err != nil {
		return respondError(c, h.Log, err)
	}

	now := today(h.Now())
	out := make([]model.BookingDetail, 0, len(all))
	for _, d := range all {
		switch filter {
		case "upcoming":
			if !booking.IsUpcoming(d.Booking, now) {
				continue
			}
		case "past":
			if !booking.IsPast(d.Booking, now) {
				continue
			}
		}
		out = append(out, d)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewsOf(out, s.Role)})
}

// GetBooking returns one of the caller's bookings.
func (h *CustomerHandler) GetBooking(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	d, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if d.UserID != s.UserID {
		return respondError(c, h.Log, repository.ErrForbidden)
	}
	return c.JSON(http.StatusOK, viewOf(*d, s.Role))
}

// CancelBooking lets a client cancel their own pending booking.
func (h *CustomerHandler) CancelBooking(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	prev, d, err := h.Bookings.UpdateStatus(ctx, repository.StatusChange{
		BookingID: id,
		Requested: model.StatusCanceled,
		ActorID:   s.UserID,
		ActorRole: s.Role,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("booking canceled by guest", "booking_id", id, "user_id", s.UserID)
	publish(c, h.Publisher, h.Log, queue.NewBookingEvent(queue.EventStatusChanged, *d, prev))
	return c.JSON(http.StatusOK, viewOf(*d, s.Role))
}

type createReviewReq struct {
	BookingID uint64  `json:"booking_id" validate:"required"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string `json:"comment" validate:"omitempty,max=2000"`
}

// CreateReview rates the hotel of one of the caller's completed stays.
func (h *CustomerHandler) CreateReview(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	var req createReviewReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rv := &model.Review{UserID: s.UserID, BookingID: &req.BookingID, Rating: req.Rating, Comment: req.Comment}
	if err := h.Reviews.Create(ctx, rv); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

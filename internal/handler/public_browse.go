// This file holds the unauthenticated catalogue: hotel search, hotel and
// room details, reviews, amenities and price quotes.  Inactive hotels are
// hidden from every route here.

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

const featuredLimit = 6

// PublicHandler serves guest browsing.
type PublicHandler struct {
	Hotels    HotelStore
	Rooms     RoomStore
	Reviews   ReviewStore
	Amenities AmenityStore
	Log       *slog.Logger
}

func NewPublicHandler(h HotelStore, r RoomStore, rv ReviewStore, a AmenityStore, log *slog.Logger) *PublicHandler {
	if h == nil || r == nil || rv == nil || a == nil {
		panic("nil store passed to NewPublicHandler")
	}
	return &PublicHandler{Hotels: h, Rooms: r, Reviews: rv, Amenities: a, Log: log}
}

// PublicHotel hides the owner and activity flag of a hotel.
type PublicHotel struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Address     string  `json:"address"`
	StarRating  int     `json:"star_rating"`
	Rating      float64 `json:"rating"`
	MainImage   string  `json:"main_image"`
}

func publicHotel(h model.Hotel) PublicHotel {
	return PublicHotel{ID: h.ID, Name: h.Name, Description: h.Description, City: h.City, Country: h.Country,
		Address: h.Address, StarRating: h.StarRating, Rating: h.Rating, MainImage: h.MainImage}
}

func publicHotels(hs []model.Hotel) []PublicHotel {
	out := make([]PublicHotel, 0, len(hs))
	for _, h := range hs {
		out = append(out, publicHotel(h))
	}
	return out
}

// RoomView adds the formatted nightly price to a room.
type RoomView struct {
	model.Room
	PricePerNightDisplay string `json:"price_per_night_display"`
}

func roomView(r model.Room) RoomView {
	return RoomView{Room: r, PricePerNightDisplay: booking.FormatPrice(r.PricePerNightCents)}
}

// hotelFilterFrom reads the search form from the query string.
func hotelFilterFrom(c echo.Context) (booking.HotelFilter, error) {
	f := booking.HotelFilter{
		Query:  strings.TrimSpace(c.QueryParam("q")),
		SortBy: booking.SortByRating,
	}
	if s := c.QueryParam("sort"); s != "" {
		switch s {
		case booking.SortByRating, booking.SortByName:
			f.SortBy = s
		default:
			return f, errors.New("sort must be rating or name")
		}
	}
	if s := c.QueryParam("min_rating"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 5 {
			return f, errors.New("min_rating must be between 0 and 5")
		}
		f.MinRating = v
	}
	if s := c.QueryParam("stars"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 5 {
			return f, errors.New("stars must be between 1 and 5")
		}
		f.StarRating = v
	}
	return f, nil
}

// ListHotels searches active hotels.  The active list is loaded once and
// filtered in memory with the same predicate the dashboards use.
func (h *PublicHandler) ListHotels(c echo.Context) error {
	f, err := hotelFilterFrom(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": err.Error()})
	}
	p, size := page(c)

	ctx, cancel := dbCtx(c)
	defer cancel()
	all, err := h.Hotels.List(ctx, repository.HotelQuery{ActiveOnly: true})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	matched := booking.FilterHotels(all, f)
	return c.JSON(http.StatusOK, echo.Map{
		"items":     publicHotels(paginate(matched, p, size)),
		"total":     len(matched),
		"page":      p,
		"page_size": size,
	})
}

// FeaturedHotels returns the best rated active hotels.
func (h *PublicHandler) FeaturedHotels(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	hs, err := h.Hotels.List(ctx, repository.HotelQuery{ActiveOnly: true, OrderBy: "rating", Limit: featuredLimit})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": publicHotels(hs)})
}

// activeHotel loads a hotel that guests may see.
func (h *PublicHandler) activeHotel(c echo.Context, id uint64) (*model.Hotel, error) {
	ctx, cancel := dbCtx(c)
	defer cancel()
	hotel, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !hotel.IsActive {
		return nil, repository.ErrHotelNotFound
	}
	return hotel, nil
}

// GetHotel returns one active hotel with its available rooms.
func (h *PublicHandler) GetHotel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	hotel, err := h.activeHotel(c, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rooms, err := h.Rooms.ListByHotel(ctx, id, true)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	views := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, roomView(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"hotel": publicHotel(*hotel), "rooms": views})
}

// ListHotelRooms returns the bookable rooms of an active hotel.
func (h *PublicHandler) ListHotelRooms(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if _, err := h.activeHotel(c, id); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rooms, err := h.Rooms.ListByHotel(ctx, id, true)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	views := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, roomView(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

// ListHotelReviews returns the reviews of an active hotel, newest first.
func (h *PublicHandler) ListHotelReviews(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if _, err := h.activeHotel(c, id); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	reviews, err := h.Reviews.ListByHotel(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": reviews})
}

// publicRoom loads a room whose hotel is active.
func (h *PublicHandler) publicRoom(c echo.Context) (*model.Room, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, errInvalidID
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := h.activeHotel(c, room.HotelID); err != nil {
		if errors.Is(err, repository.ErrHotelNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// GetRoom returns a room of an active hotel.
func (h *PublicHandler) GetRoom(c echo.Context) error {
	room, err := h.publicRoom(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, roomView(*room))
}

type quoteReq struct {
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests   int    `json:"guests"`
}

type quoteResp struct {
	booking.Quote
	TotalDisplay string `json:"total_display"`
	Valid        bool   `json:"valid"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
}

// QuoteRoom previews nights and total for a stay and reports whether a
// booking with those values would be accepted.  Nothing is written.
func (h *PublicHandler) QuoteRoom(c echo.Context) error {
	room, err := h.publicRoom(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req quoteReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	in, _ := booking.ParseDate(req.CheckIn)
	out, _ := booking.ParseDate(req.CheckOut)
	if req.Guests == 0 {
		req.Guests = 1
	}

	q := booking.QuoteStay(in, out, *room)
	resp := quoteResp{Quote: q, TotalDisplay: q.TotalDisplay(), Valid: true}
	if verr := booking.ValidateBookingRequest(in, out, req.Guests, *room); verr != nil {
		var ve *booking.ValidationError
		if errors.As(verr, &ve) {
			resp.Valid, resp.Error, resp.Message = false, ve.Code(), ve.Message
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ListAmenities returns the amenity catalogue.
func (h *PublicHandler) ListAmenities(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Amenities.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

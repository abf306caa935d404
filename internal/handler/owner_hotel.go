package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// OwnerHandler lets hotel owners manage their hotels, rooms and the
// bookings made for them.  Every route is scoped to the caller's hotels.
type OwnerHandler struct {
	Hotels    HotelStore
	Rooms     RoomStore
	Bookings  BookingStore
	Publisher EventPublisher
	Log       *slog.Logger
}

func NewOwnerHandler(h HotelStore, r RoomStore, b BookingStore, pub EventPublisher, log *slog.Logger) *OwnerHandler {
	if h == nil || r == nil || b == nil {
		panic("nil store passed to NewOwnerHandler")
	}
	return &OwnerHandler{Hotels: h, Rooms: r, Bookings: b, Publisher: pub, Log: log}
}

type hotelReq struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	City        string `json:"city" validate:"required,max=100"`
	Country     string `json:"country" validate:"required,max=100"`
	Address     string `json:"address" validate:"required,max=255"`
	StarRating  int    `json:"star_rating" validate:"required,min=1,max=5"`
	MainImage   string `json:"main_image" validate:"omitempty,url"`
	IsActive    *bool  `json:"is_active"`
}

type hotelPatchReq struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	City        *string `json:"city" validate:"omitempty,min=1,max=100"`
	Country     *string `json:"country" validate:"omitempty,min=1,max=100"`
	Address     *string `json:"address" validate:"omitempty,min=1,max=255"`
	StarRating  *int    `json:"star_rating" validate:"omitempty,min=1,max=5"`
	MainImage   *string `json:"main_image" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

func (r hotelReq) apply(h *model.Hotel) {
	h.Name = strings.TrimSpace(r.Name)
	h.Description = strings.TrimSpace(r.Description)
	h.City = strings.TrimSpace(r.City)
	h.Country = strings.TrimSpace(r.Country)
	h.Address = strings.TrimSpace(r.Address)
	h.StarRating = r.StarRating
	h.MainImage = strings.TrimSpace(r.MainImage)
	if r.IsActive != nil {
		h.IsActive = *r.IsActive
	}
}

func (r hotelPatchReq) apply(h *model.Hotel) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&h.Name, r.Name)
	set(&h.Description, r.Description)
	set(&h.City, r.City)
	set(&h.Country, r.Country)
	set(&h.Address, r.Address)
	set(&h.MainImage, r.MainImage)
	if r.StarRating != nil {
		h.StarRating = *r.StarRating
	}
	if r.IsActive != nil {
		h.IsActive = *r.IsActive
	}
}

// CreateHotel handles POST /v1/owner/hotels.  New hotels are active
// unless is_active=false is sent.
func (h *OwnerHandler) CreateHotel(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	var req hotelReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	hotel := &model.Hotel{OwnerID: s.UserID, IsActive: true}
	req.apply(hotel)

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Hotels.Create(ctx, hotel); err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("hotel created", "hotel_id", hotel.ID, "owner_id", s.UserID)
	return c.JSON(http.StatusCreated, hotel)
}

// ListHotels handles GET /v1/owner/hotels, active and inactive alike.
func (h *OwnerHandler) ListHotels(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Hotels.List(ctx, repository.HotelQuery{OwnerID: s.UserID})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetHotel returns one of the caller's hotels with all of its rooms.
func (h *OwnerHandler) GetHotel(c echo.Context) error {
	hotel, err := h.ownedHotel(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rooms, err := h.Rooms.ListByHotel(ctx, hotel.ID, false)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hotel": hotel, "rooms": rooms})
}

// ownedHotel resolves :id to a hotel of the caller.
func (h *OwnerHandler) ownedHotel(c echo.Context) (*model.Hotel, error) {
	s, ok := session(c)
	if !ok {
		return nil, errNoSession
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil, errInvalidID
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	return h.Hotels.GetByIDAndOwner(ctx, id, s.UserID)
}

// UpdateHotel handles PUT (full) and PATCH (partial) on /v1/owner/hotels/:id.
func (h *OwnerHandler) UpdateHotel(c echo.Context) error {
	hotel, err := h.ownedHotel(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if c.Request().Method == http.MethodPatch {
		var req hotelPatchReq
		if !bindAndValidate(c, &req) {
			return nil
		}
		req.apply(hotel)
	} else {
		var req hotelReq
		if !bindAndValidate(c, &req) {
			return nil
		}
		req.apply(hotel)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Hotels.Update(ctx, hotel); err != nil {
		return respondError(c, h.Log, err)
	}
	updated, err := h.Hotels.GetByID(ctx, hotel.ID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, updated)
}

type activeReq struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// SetHotelActive handles PATCH /v1/owner/hotels/:id/active.
func (h *OwnerHandler) SetHotelActive(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req activeReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Hotels.SetActive(ctx, id, &s.UserID, *req.IsActive); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": *req.IsActive})
}

// DeleteHotel handles DELETE /v1/owner/hotels/:id.  Hotels with live
// bookings cannot be deleted.
func (h *OwnerHandler) DeleteHotel(c echo.Context) error {
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
	if err := h.Hotels.DeleteByIDAndOwner(ctx, id, s.UserID); err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("hotel deleted", "hotel_id", id, "owner_id", s.UserID)
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
)

type roomReq struct {
	Title              string  `json:"title" validate:"required,max=200"`
	Description        string  `json:"description" validate:"max=5000"`
	PricePerNightCents int64   `json:"price_per_night_cents" validate:"required,gt=0"`
	MaxGuests          int     `json:"max_guests" validate:"required,min=1,max=50"`
	BedType            *string `json:"bed_type" validate:"omitempty,max=50"`
	RoomSize           *int    `json:"room_size" validate:"omitempty,gt=0"`
	IsAvailable        *bool   `json:"is_available"`
}

type roomPatchReq struct {
	Title              *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description        *string `json:"description" validate:"omitempty,max=5000"`
	PricePerNightCents *int64  `json:"price_per_night_cents" validate:"omitempty,gt=0"`
	MaxGuests          *int    `json:"max_guests" validate:"omitempty,min=1,max=50"`
	BedType            *string `json:"bed_type" validate:"omitempty,max=50"`
	RoomSize           *int    `json:"room_size" validate:"omitempty,gt=0"`
	IsAvailable        *bool   `json:"is_available"`
}

func (r roomReq) apply(rm *model.Room) {
	rm.Title = strings.TrimSpace(r.Title)
	rm.Description = strings.TrimSpace(r.Description)
	rm.PricePerNightCents = r.PricePerNightCents
	rm.MaxGuests = r.MaxGuests
	rm.BedType = r.BedType
	rm.RoomSize = r.RoomSize
	if r.IsAvailable != nil {
		rm.IsAvailable = *r.IsAvailable
	}
}

func (r roomPatchReq) apply(rm *model.Room) {
	if r.Title != nil {
		rm.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		rm.Description = strings.TrimSpace(*r.Description)
	}
	if r.PricePerNightCents != nil {
		rm.PricePerNightCents = *r.PricePerNightCents
	}
	if r.MaxGuests != nil {
		rm.MaxGuests = *r.MaxGuests
	}
	if r.BedType != nil {
		rm.BedType = r.BedType
	}
	if r.RoomSize != nil {
		rm.RoomSize = r.RoomSize
	}
	if r.IsAvailable != nil {
		rm.IsAvailable = *r.IsAvailable
	}
}

// CreateRoom handles POST /v1/owner/hotels/:id/rooms.
func (h *OwnerHandler) CreateRoom(c echo.Context) error {
	hotel, err := h.ownedHotel(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req roomReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	room := &model.Room{HotelID: hotel.ID, IsAvailable: true}
	req.apply(room)

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Rooms.Create(ctx, room); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, roomView(*room))
}

// ownedRoom resolves :id to a room of one of the caller's hotels.
func (h *OwnerHandler) ownedRoom(c echo.Context) (*model.Room, error) {
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
	return h.Rooms.GetByIDAndOwner(ctx, id, s.UserID)
}

// UpdateRoom handles PUT (full) and PATCH (partial) on /v1/owner/rooms/:id.
// A price change never touches existing bookings.
func (h *OwnerHandler) UpdateRoom(c echo.Context) error {
	room, err := h.ownedRoom(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if c.Request().Method == http.MethodPatch {
		var req roomPatchReq
		if !bindAndValidate(c, &req) {
			return nil
		}
		req.apply(room)
	} else {
		var req roomReq
		if !bindAndValidate(c, &req) {
			return nil
		}
		req.apply(room)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Rooms.Update(ctx, room); err != nil {
		return respondError(c, h.Log, err)
	}
	updated, err := h.Rooms.GetByID(ctx, room.ID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, roomView(*updated))
}

// DeleteRoom handles DELETE /v1/owner/rooms/:id.
func (h *OwnerHandler) DeleteRoom(c echo.Context) error {
	room, err := h.ownedRoom(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Rooms.Delete(ctx, room.ID); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

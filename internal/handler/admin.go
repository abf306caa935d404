package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// AdminHandler manages users, hotels, bookings and amenities across the
// whole platform.
type AdminHandler struct {
	Profiles  ProfileStore
	Hotels    HotelStore
	Bookings  BookingStore
	Amenities AmenityStore
	Publisher EventPublisher
	Log       *slog.Logger
}

func NewAdminHandler(p ProfileStore, h HotelStore, b BookingStore, a AmenityStore, pub EventPublisher, log *slog.Logger) *AdminHandler {
	if p == nil || h == nil || b == nil || a == nil {
		panic("nil store passed to NewAdminHandler")
	}
	return &AdminHandler{Profiles: p, Hotels: h, Bookings: b, Amenities: a, Publisher: pub, Log: log}
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	users, err := h.Profiles.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": users})
}

type roleReq struct {
	Role string `json:"role" validate:"required,oneof=client owner admin"`
}

// UpdateUserRole handles PATCH /v1/admin/users/:id/role.  Admins cannot
// demote themselves.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req roleReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	role := model.Role(req.Role)
	if id == s.UserID && role != model.RoleAdmin {
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": "cannot change your own role"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Profiles.UpdateRole(ctx, id, role); err != nil {
		return respondError(c, h.Log, err)
	}
	p, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("user role changed", "user_id", id, "role", role, "admin_id", s.UserID)
	return c.JSON(http.StatusOK, p)
}

// DeleteUser handles DELETE /v1/admin/users/:id.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	s, ok := session(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if id == s.UserID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": "cannot delete yourself"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Profiles.Delete(ctx, id); err != nil {
		return respondError(c, h.Log, err)
	}
	h.Log.Info("user deleted", "user_id", id, "admin_id", s.UserID)
	return c.NoContent(http.StatusNoContent)
}

// ListHotels handles GET /v1/admin/hotels, including inactive ones.
func (h *AdminHandler) ListHotels(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Hotels.List(ctx, repository.HotelQuery{})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// SetHotelActive handles PATCH /v1/admin/hotels/:id/active.
func (h *AdminHandler) SetHotelActive(c echo.Context) error {
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
	if err := h.Hotels.SetActive(ctx, id, nil, *req.IsActive); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": *req.IsActive})
}

// DeleteHotel handles DELETE /v1/admin/hotels/:id.
func (h *AdminHandler) DeleteHotel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return invalidID(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Hotels.Delete(ctx, id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings handles GET /v1/admin/bookings.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	q, ok := bookingQueryFrom(c)
	if !ok {
		return badFilter(c)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	items, err := h.Bookings.List(ctx, q)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": viewsOf(items, model.RoleAdmin)})
}

// UpdateBookingStatus handles PATCH /v1/admin/bookings/:id/status.
func (h *AdminHandler) UpdateBookingStatus(c echo.Context) error {
	return changeStatus(c, h.Bookings, h.Publisher, h.Log)
}

// Analytics handles GET /v1/admin/analytics.
func (h *AdminHandler) Analytics(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	users, err := h.Profiles.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	hotels, err := h.Hotels.List(ctx, repository.HotelQuery{})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ds, err := h.Bookings.List(ctx, repository.BookingQuery{})
	if err != nil {
		return respondError(c, h.Log, err)
	}

	byRole := map[model.Role]int{model.RoleClient: 0, model.RoleOwner: 0, model.RoleAdmin: 0}
	for _, u := range users {
		byRole[u.Role]++
	}
	active := 0
	for _, ht := range hotels {
		if ht.IsActive {
			active++
		}
	}
	stats := booking.Summarize(bookingsOf(ds))
	return c.JSON(http.StatusOK, echo.Map{
		"users":           len(users),
		"users_by_role":   byRole,
		"hotels":          len(hotels),
		"active_hotels":   active,
		"stats":           stats,
		"revenue_display": booking.FormatPrice(stats.RevenueCents),
	})
}

type amenityReq struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Icon     *string `json:"icon" validate:"omitempty,max=100"`
	Category *string `json:"category" validate:"omitempty,max=50"`
}

// CreateAmenity handles POST /v1/admin/amenities.
func (h *AdminHandler) CreateAmenity(c echo.Context) error {
	var req amenityReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	a := &model.Amenity{Name: req.Name, Icon: req.Icon, Category: req.Category}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Amenities.Create(ctx, a); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, a)
}

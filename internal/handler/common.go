// Package handler exposes the HTTP handlers of the booking API.  Handlers
// depend on the small store interfaces below so they can be exercised
// without a database.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

const dbTimeout = 5 * time.Second

// HotelStore is implemented by *repository.HotelRepo.
type HotelStore interface {
	Create(ctx context.Context, h *model.Hotel) error
	GetByID(ctx context.Context, id uint64) (*model.Hotel, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Hotel, error)
	List(ctx context.Context, q repository.HotelQuery) ([]model.Hotel, error)
	Update(ctx context.Context, h *model.Hotel) error
	SetActive(ctx context.Context, id uint64, ownerID *uint64, active bool) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
	Delete(ctx context.Context, id uint64) error
}

// RoomStore is implemented by *repository.RoomRepo.
type RoomStore interface {
	Create(ctx context.Context, rm *model.Room) error
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Room, error)
	ListByHotel(ctx context.Context, hotelID uint64, availableOnly bool) ([]model.Room, error)
	Update(ctx context.Context, rm *model.Room) error
	Delete(ctx context.Context, id uint64) error
}

// BookingStore is implemented by *repository.BookingRepo.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.BookingDetail, error)
	List(ctx context.Context, q repository.BookingQuery) ([]model.BookingDetail, error)
	UpdateStatus(ctx context.Context, ch repository.StatusChange) (model.BookingStatus, *model.BookingDetail, error)
}

// ProfileStore is implemented by *repository.ProfileRepo.
type ProfileStore interface {
	Create(ctx context.Context, np repository.NewProfile, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetByID(ctx context.Context, id uint64) (*model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
	UpdateProfile(ctx context.Context, id uint64, fullName string, phone *string) error
	UpdateRole(ctx context.Context, id uint64, role model.Role) error
	Delete(ctx context.Context, id uint64) error
}

// TokenStore is implemented by *repository.TokenRepo.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	Rotate(ctx context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// ReviewStore is implemented by *repository.ReviewRepo.
type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review) error
	ListByHotel(ctx context.Context, hotelID uint64) ([]model.Review, error)
}

// AmenityStore is implemented by *repository.AmenityRepo.
type AmenityStore interface {
	Create(ctx context.Context, a *model.Amenity) error
	List(ctx context.Context) ([]model.Amenity, error)
}

// EventPublisher is implemented by *service.BookingPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator { return &Validator{v: validator.New(validator.WithRequiredStructEnabled())} }

func (cv *Validator) Validate(i any) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return "invalid field " + fe.Field() + " (" + fe.Tag() + ")"
	}
	return err.Error()
}

// bindAndValidate decodes the body into req and runs its validate tags.
// On failure it writes the 400 response and reports false; the caller
// must stop there.
func bindAndValidate(c echo.Context, req any) bool {
	if err := c.Bind(req); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "message": "invalid body"})
		return false
	}
	if err := c.Validate(req); err != nil {
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": msg})
		return false
	}
	return true
}

// session returns the caller placed on the context by the JWT middleware.
func session(c echo.Context) (middleware.Session, bool) {
	return middleware.SessionFrom(c)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

var (
	errNoSession = errors.New("no session")
	errInvalidID = errors.New("invalid id")
)

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_id", "message": "invalid id"})
}

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// respondError maps core and repository errors onto the JSON error shape.
// Anything unrecognised is logged and reported as a 500.
func respondError(c echo.Context, log *slog.Logger, err error) error {
	var ve *booking.ValidationError
	switch {
	case errors.Is(err, errNoSession):
		return unauthorized(c)
	case errors.Is(err, errInvalidID):
		return invalidID(c)
	case errors.As(err, &ve):
		status := http.StatusUnprocessableEntity
		if errors.Is(err, booking.ErrInvalidTransition) {
			status = http.StatusConflict
		}
		return c.JSON(status, echo.Map{"error": ve.Code(), "message": ve.Message})
	case errors.Is(err, booking.ErrRoomUnavailable):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "room_unavailable", "message": "room is not available for booking"})
	case errors.Is(err, repository.ErrRoomBooked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "room_booked", "message": err.Error()})
	case errors.Is(err, repository.ErrHotelNotFound),
		errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrProfileNotFound),
		errors.Is(err, repository.ErrReviewNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": "not allowed"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": "live bookings prevent this change"})
	case errors.Is(err, repository.ErrEmailExists), errors.Is(err, repository.ErrAmenityExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already_exists", "message": err.Error()})
	case errors.Is(err, repository.ErrNotReviewable):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "not_reviewable", "message": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		log.Error("request timed out", "path", c.Request().URL.Path, "error", err)
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "timeout"})
	}
	log.Error("request failed", "path", c.Request().URL.Path, "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error"})
}

// page extracts page/page_size query parameters with sane bounds.
func page(c echo.Context) (int, int) {
	p, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	if p < 1 {
		p = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return p, size
}

func paginate[T any](items []T, p, size int) []T {
	start := (p - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// bookingView is a booking as returned to clients, with the total
// formatted next to the cents.
type bookingView struct {
	model.BookingDetail
	Nights            int                   `json:"nights"`
	TotalPriceDisplay string                `json:"total_price_display"`
	AllowedStatuses   []model.BookingStatus `json:"allowed_statuses,omitempty"`
}

func viewOf(d model.BookingDetail, actor model.Role) bookingView {
	return bookingView{
		BookingDetail:     d,
		Nights:            booking.ComputeNights(d.CheckIn, d.CheckOut),
		TotalPriceDisplay: booking.FormatPrice(d.TotalPriceCents),
		AllowedStatuses:   booking.AllowedTransitions(d.Status, actor),
	}
}

func viewsOf(ds []model.BookingDetail, actor model.Role) []bookingView {
	out := make([]bookingView, 0, len(ds))
	for _, d := range ds {
		out = append(out, viewOf(d, actor))
	}
	return out
}

func bookingsOf(ds []model.BookingDetail) []model.Booking {
	out := make([]model.Booking, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Booking)
	}
	return out
}

// publish sends a booking event without failing the request.
func publish(c echo.Context, pub EventPublisher, log *slog.Logger, ev queue.BookingEvent) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 3*time.Second)
	defer cancel()
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn("booking event not published", "type", ev.Type, "booking_id", ev.BookingID, "error", err)
	}
}

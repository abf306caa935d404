package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// RegisterCustomer registers the client endpoints under /v1.  Every route
// requires a valid JWT and the client role.  The middleware is attached
// per route because /v1 is shared with the public catalogue.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleClient),
	}
	g := e.Group("/v1")
	g.POST("/bookings", h.CreateBooking, mw...)
	g.GET("/my-bookings", h.MyBookings, mw...)
	g.GET("/bookings/:id", h.GetBooking, mw...)
	g.POST("/bookings/:id/cancel", h.CancelBooking, mw...)
	g.POST("/reviews", h.CreateReview, mw...)
}

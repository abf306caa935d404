package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// RegisterAdmin registers platform-wide management under /v1/admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	}, extra...)
	g := e.Group("/v1/admin", mw...)

	g.GET("/users", a.ListUsers)
	g.PATCH("/users/:id/role", a.UpdateUserRole)
	g.DELETE("/users/:id", a.DeleteUser)

	g.GET("/hotels", a.ListHotels)
	g.PATCH("/hotels/:id/active", a.SetHotelActive)
	g.DELETE("/hotels/:id", a.DeleteHotel)

	g.GET("/bookings", a.ListBookings)
	g.PATCH("/bookings/:id/status", a.UpdateBookingStatus)

	g.GET("/analytics", a.Analytics)
	g.POST("/amenities", a.CreateAmenity)
}

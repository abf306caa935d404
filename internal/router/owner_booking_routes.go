package router

// Owner booking routes are kept apart from the property routes; they share
// the /v1/owner group and its middleware.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

func registerOwnerBookings(g *echo.Group, o *handler.OwnerHandler) {
	g.GET("/bookings", o.ListBookings)
	g.PATCH("/bookings/:id/status", o.UpdateBookingStatus)
	g.GET("/analytics", o.Analytics)
}

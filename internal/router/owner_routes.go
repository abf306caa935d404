package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// RegisterOwner registers owner-scoped endpoints under /v1/owner.  All
// routes require a valid JWT and the owner role; extra middleware (cache
// invalidation) runs after the role check.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner),
	}, extra...)
	g := e.Group("/v1/owner", mw...)

	// ---- Hotels ----
	g.GET("/hotels", o.ListHotels)
	g.POST("/hotels", o.CreateHotel)
	g.GET("/hotels/:id", o.GetHotel)
	g.PUT("/hotels/:id", o.UpdateHotel)
	g.PATCH("/hotels/:id", o.UpdateHotel) // partial update
	g.PATCH("/hotels/:id/active", o.SetHotelActive)
	g.DELETE("/hotels/:id", o.DeleteHotel)

	// ---- Rooms ----
	g.POST("/hotels/:id/rooms", o.CreateRoom)
	g.PUT("/rooms/:id", o.UpdateRoom)
	g.PATCH("/rooms/:id", o.UpdateRoom)
	g.DELETE("/rooms/:id", o.DeleteRoom)

	registerOwnerBookings(g, o)
}

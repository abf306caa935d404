package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
)

// RegisterRoutes installs the request validator and the probes that do
// not require authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.Validator = handler.NewValidator()
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers sign-up, sign-in, token and profile routes.
// Token operations live under /v1/auth; /v1/me needs a valid access
// token of any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout) // refresh_token in body or bearer for all sessions

	signedIn := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleClient, model.RoleOwner, model.RoleAdmin),
	}
	e.GET("/v1/me", a.Me, signedIn...)
	e.PATCH("/v1/me", a.UpdateMe, signedIn...)
}

// RegisterPublic registers the guest catalogue.  No JWT or role middleware
// applies; inactive hotels are filtered by the handlers.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	e.GET("/v1/hotels", p.ListHotels)
	e.GET("/v1/hotels/featured", p.FeaturedHotels)
	e.GET("/v1/hotels/:id", p.GetHotel)
	e.GET("/v1/hotels/:id/rooms", p.ListHotelRooms)
	e.GET("/v1/hotels/:id/reviews", p.ListHotelReviews)
	e.GET("/v1/rooms/:id", p.GetRoom)
	e.POST("/v1/rooms/:id/quote", p.QuoteRoom) // read-only price preview
	e.GET("/v1/amenities", p.ListAmenities)
}

package middleware

// identity.go carries the authenticated caller through the request.  The
// JWT middleware stores a Session on the echo context; handlers and other
// middleware read it back with SessionFrom.  Nothing about the caller is
// kept outside the request.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
)

const sessionKey = "session"

// Session identifies the caller of a single request.
type Session struct {
	UserID uint64
	Role   model.Role
}

// SetSession stores s on the request context.
func SetSession(c echo.Context, s Session) {
	c.Set(sessionKey, s)
}

// SessionFrom returns the session placed by JWTAuth, if any.
func SessionFrom(c echo.Context) (Session, bool) {
	s, ok := c.Get(sessionKey).(Session)
	if !ok || s.UserID == 0 {
		return Session{}, false
	}
	return s, true
}

// userID is the caller's id as a key fragment, "anon" for guests.
func userID(c echo.Context) string {
	if s, ok := SessionFrom(c); ok {
		return strconv.FormatUint(s.UserID, 10)
	}
	return "anon"
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/labstack/echo/v4"
)

// ViewerKey is the echo context key holding the request's feed.Viewer
const ViewerKey = "viewer"

// AuthConfig tunes the authentication middlewares
type AuthConfig struct {
	// Optional lets requests without an Authorization header through as the
	// anonymous viewer. A header carrying a bad token is still rejected.
	Optional bool
}

// ViewerFrom returns the viewer stored by an authentication middleware, or
// the anonymous viewer when there is none.
func ViewerFrom(c echo.Context) feed.Viewer {
	if v, ok := c.Get(ViewerKey).(feed.Viewer); ok {
		return v
	}
	return feed.Anonymous
}

// bearerToken extracts the token of a "Bearer <token>" header
func bearerToken(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}

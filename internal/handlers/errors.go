package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps a feed error onto an HTTP error. entity names the thing
// the request was about, e.g. "Post". Storage failures become a generic 500;
// the cause is attached for the request logger only.
func toHTTPError(err error, entity string) error {
	var ve *feed.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	case errors.Is(err, feed.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, feed.ErrNotFoundOrUnauthorized):
		return echo.NewHTTPError(http.StatusNotFound, entity+" not found or unauthorized")
	case errors.Is(err, feed.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, entity+" not found")
	case errors.Is(err, feed.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, entity+" already exists")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
}

package handlers

import (
	"net/http"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// UserHandler serves user profiles
type UserHandler struct {
	feed *feed.Service
}

func NewUserHandler(svc *feed.Service) *UserHandler {
	return &UserHandler{feed: svc}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, optionalAuth, requireAuth echo.MiddlewareFunc) {
	g.GET("/profile", h.GetProfile, requireAuth)
	g.GET("/users/:id", h.GetUser, optionalAuth)
}

// GetUser returns another user's profile as seen by the viewer
func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.feed.Profile(c.Request().Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err, "User")
	}
	return c.JSON(http.StatusOK, profile)
}

// GetProfile returns the viewer's own profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	viewer := middleware.ViewerFrom(c)
	profile, err := h.feed.Profile(c.Request().Context(), viewer, viewer.ID)
	if err != nil {
		return toHTTPError(err, "User profile")
	}
	return c.JSON(http.StatusOK, profile)
}

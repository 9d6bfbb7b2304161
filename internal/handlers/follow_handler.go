package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	feed *feed.Service
}

func NewFollowHandler(svc *feed.Service) *FollowHandler {
	return &FollowHandler{feed: svc}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/users/:id/follow", h.FollowUser, requireAuth)
	g.DELETE("/users/:id/follow", h.UnfollowUser, requireAuth)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	if err := h.feed.Follow(c.Request().Context(), middleware.ViewerFrom(c), c.Param("id")); err != nil {
		if errors.Is(err, feed.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Already following this user")
		}
		return toHTTPError(err, "User")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	if err := h.feed.Unfollow(c.Request().Context(), middleware.ViewerFrom(c), c.Param("id")); err != nil {
		return toHTTPError(err, "Follow")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

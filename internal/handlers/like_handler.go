package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	feed *feed.Service
}

func NewLikeHandler(svc *feed.Service) *LikeHandler {
	return &LikeHandler{feed: svc}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/posts/:id/likes", h.LikePost, requireAuth)
	g.DELETE("/posts/:id/likes", h.UnlikePost, requireAuth)
}

// LikePost handles liking a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	like, err := h.feed.LikePost(c.Request().Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, feed.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, "Post already liked by this user")
		}
		return toHTTPError(err, "Post")
	}
	return c.JSON(http.StatusCreated, like)
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	if err := h.feed.UnlikePost(c.Request().Context(), middleware.ViewerFrom(c), c.Param("id")); err != nil {
		return toHTTPError(err, "Like")
	}
	return c.NoContent(http.StatusNoContent)
}

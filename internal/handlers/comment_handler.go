package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/middleware"
	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	feed *feed.Service
}

func NewCommentHandler(svc *feed.Service) *CommentHandler {
	return &CommentHandler{feed: svc}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/posts/:id/comments", h.CreateComment, requireAuth)
	g.DELETE("/comments/:id", h.DeleteComment, requireAuth)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.feed.AddComment(c.Request().Context(), middleware.ViewerFrom(c), c.Param("id"), req.Text)
	if err != nil {
		return toHTTPError(err, "Post")
	}
	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment deletes one of the viewer's comments
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	if err := h.feed.DeleteComment(c.Request().Context(), middleware.ViewerFrom(c), uint(commentID)); err != nil {
		return toHTTPError(err, "Comment")
	}
	return c.NoContent(http.StatusNoContent)
}

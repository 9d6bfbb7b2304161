package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/middleware"
	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// photoFields are the multipart fields accepted for the post image, in order
var photoFields = []string{"photo", "image"}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	feed *feed.Service
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(svc *feed.Service) *PostHandler {
	return &PostHandler{feed: svc}
}

// RegisterPostRoutes registers post-related routes. Reads accept anonymous
// viewers, mutations require an authenticated one.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, optionalAuth, requireAuth echo.MiddlewareFunc) {
	g.GET("/posts", h.GetPosts, optionalAuth)
	g.GET("/posts/:id", h.GetPost, optionalAuth)
	g.POST("/posts", h.CreatePost, requireAuth)
	g.PUT("/posts/:id", h.UpdatePost, requireAuth)
	g.PATCH("/posts/:id", h.UpdatePost, requireAuth)
	g.DELETE("/posts/:id", h.DeletePost, requireAuth)
}

// GetPosts returns the viewer's feed; ?explore switches to every post
func (h *PostHandler) GetPosts(c echo.Context) error {
	views, err := h.feed.Feed(c.Request().Context(), middleware.ViewerFrom(c), exploreFlag(c.QueryParam("explore")))
	if err != nil {
		return toHTTPError(err, "Post")
	}
	return c.JSON(http.StatusOK, views)
}

// exploreFlag treats any present value other than a false boolean as set
func exploreFlag(raw string) bool {
	if raw == "" {
		return false
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return true
}

// GetPost returns a single post with its comments
func (h *PostHandler) GetPost(c echo.Context) error {
	detail, err := h.feed.AggregatePost(c.Request().Context(), middleware.ViewerFrom(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err, "Post")
	}
	return c.JSON(http.StatusOK, detail)
}

// CreatePost creates a post from a multipart form carrying the image and text
func (h *PostHandler) CreatePost(c echo.Context) error {
	image, err := readPhoto(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
	}

	post, err := h.feed.CreatePost(c.Request().Context(), middleware.ViewerFrom(c), c.FormValue("text"), image)
	if err != nil {
		return toHTTPError(err, "Post")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Post has been added", "post": post})
}

// readPhoto returns the uploaded image bytes, or nil when none was sent
func readPhoto(c echo.Context) ([]byte, error) {
	for _, field := range photoFields {
		fh, err := c.FormFile(field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			// not a multipart request: there is no image
			return nil, nil
		}
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return io.ReadAll(src)
	}
	return nil, nil
}

// UpdatePost updates the photo and/or text of the viewer's post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.feed.UpdatePost(c.Request().Context(), middleware.ViewerFrom(c), c.Param("id"), req.Img, req.Text)
	if err != nil {
		return toHTTPError(err, "Post")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post has been updated", "post": post})
}

// DeletePost deletes the viewer's post with its comments and likes
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.feed.DeletePost(c.Request().Context(), middleware.ViewerFrom(c), c.Param("id")); err != nil {
		return toHTTPError(err, "Post")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Post has been deleted"})
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client implements it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserLookup finds the local user linked to a Firebase UID
type UserLookup interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// FirebaseAuthMiddleware verifies Firebase ID tokens and stores the linked
// local user as the viewer.
func FirebaseAuthMiddleware(verifier TokenVerifier, users UserLookup, cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if cfg.Optional {
					c.Set(ViewerKey, feed.Anonymous)
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			idToken, err := bearerToken(authHeader)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token").SetInternal(err)
			}

			user, err := users.GetUserByFirebaseUID(ctx, token.UID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return echo.NewHTTPError(http.StatusForbidden, "must have a user profile")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
			}

			c.Set(ViewerKey, feed.Viewer{ID: user.ID})
			return next(c)
		}
	}
}

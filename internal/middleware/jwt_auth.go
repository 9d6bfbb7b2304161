package middleware

import (
	"errors"
	"net/http"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTAuthMiddleware checks for a valid HS256 JWT and stores its user as the viewer.
func JWTAuthMiddleware(secret string, cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if cfg.Optional {
					c.Set(ViewerKey, feed.Anonymous)
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			tokenString, err := bearerToken(authHeader)
			if err != nil {
				return err
			}

			claims := &models.JwtCustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil {
				if errors.Is(err, jwt.ErrSignatureInvalid) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			if !token.Valid || claims.UserID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ViewerKey, feed.Viewer{ID: claims.UserID})
			return next(c)
		}
	}
}

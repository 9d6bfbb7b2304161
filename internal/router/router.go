package router

import (
	"log"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/handlers"
	"github.com/anonto42/photo-feed/backend/internal/middleware"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// Dependencies are the services the routes are wired to
type Dependencies struct {
	Feed      *feed.Service
	Users     repositories.UserRepository
	JWTSecret string

	// Firebase switches request authentication from local JWTs to Firebase
	// ID tokens and replaces signup/signin with /api/auth/firebase-login.
	// Nil keeps JWTs.
	Firebase middleware.TokenVerifier
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	optionalAuth, requireAuth := authMiddlewares(deps)

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Firebase, deps.JWTSecret)
	authHandler.RegisterAuthRoutes(e.Group("/api/auth"))
	log.Println("Auth routes configured.")

	api := e.Group("/api")

	// Post and feed routes
	handlers.NewPostHandler(deps.Feed).RegisterPostRoutes(api, optionalAuth, requireAuth)
	log.Println("Post routes configured.")

	// Like routes
	handlers.NewLikeHandler(deps.Feed).RegisterLikeRoutes(api, requireAuth)
	log.Println("Like routes configured.")

	// Comment routes
	handlers.NewCommentHandler(deps.Feed).RegisterCommentRoutes(api, requireAuth)
	log.Println("Comment routes configured.")

	// Follow routes
	handlers.NewFollowHandler(deps.Feed).RegisterFollowRoutes(api, requireAuth)
	log.Println("Follow routes configured.")

	// User profile routes
	handlers.NewUserHandler(deps.Feed).RegisterProfileRoutes(api, optionalAuth, requireAuth)
	log.Println("User profile routes configured.")

	log.Println("All routes configured.")
}

// authMiddlewares returns the optional and required authentication
// middlewares for the configured provider.
func authMiddlewares(deps Dependencies) (optional, required echo.MiddlewareFunc) {
	if deps.Firebase != nil {
		log.Println("Firebase ID token authentication enabled.")
		return middleware.FirebaseAuthMiddleware(deps.Firebase, deps.Users, middleware.AuthConfig{Optional: true}),
			middleware.FirebaseAuthMiddleware(deps.Firebase, deps.Users, middleware.AuthConfig{})
	}
	log.Println("JWT authentication enabled.")
	return middleware.JWTAuthMiddleware(deps.JWTSecret, middleware.AuthConfig{Optional: true}),
		middleware.JWTAuthMiddleware(deps.JWTSecret, middleware.AuthConfig{})
}

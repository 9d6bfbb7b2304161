package main

import (
	"context"
	"log"

	"github.com/anonto42/photo-feed/backend/internal/feed"
	"github.com/anonto42/photo-feed/backend/internal/messaging"
	"github.com/anonto42/photo-feed/backend/internal/middleware"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
	"github.com/anonto42/photo-feed/backend/internal/router"
	"github.com/anonto42/photo-feed/backend/pkg/config"
	"github.com/anonto42/photo-feed/backend/pkg/firebase"
	"github.com/anonto42/photo-feed/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	if err := repositories.AutoMigrate(db.SQL); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("SQL auto-migrations completed.")

	ctx := context.Background()
	postRepo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDatabase))
	if err := postRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create MongoDB indexes: %v", err)
	}
	userRepo := repositories.NewGormUserRepository(db.SQL)

	deps := feed.Dependencies{
		Posts:     postRepo,
		Likes:     repositories.NewGormLikeRepository(db.SQL),
		Comments:  repositories.NewGormCommentRepository(db.SQL),
		Follows:   repositories.NewGormFollowRepository(db.SQL),
		Users:     userRepo,
		Tx:        repositories.NewGormTransactor(db.SQL),
		MaxFanout: cfg.FeedMaxFanout,
	}

	// Post events are optional
	if cfg.NatsURL != "" {
		nc, err := messaging.Connect(cfg.NatsURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Close()
		deps.Events = messaging.NewNatsPublisher(nc)
	} else {
		log.Println("NATS_URL not set, post events disabled.")
	}

	var verifier middleware.TokenVerifier
	if cfg.AuthProvider == "firebase" {
		client, err := firebase.InitAuth(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		verifier = client
	}

	// Create Echo instance
	e := echo.New()
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e)

	router.SetupRoutes(e, router.Dependencies{
		Feed:      feed.NewService(deps),
		Users:     userRepo,
		JWTSecret: cfg.JWTSecret,
		Firebase:  verifier,
	})

	log.Printf("Starting server on port %s (%s)", cfg.Port, cfg.Env)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

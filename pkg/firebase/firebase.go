package firebase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// ErrNoCredentials is returned when no credentials path is configured
var ErrNoCredentials = errors.New("firebase credentials path not provided")

// InitAuth initializes the Firebase application and returns its
// authentication client, used to verify ID tokens.
func InitAuth(ctx context.Context, credentialsPath string) (*auth.Client, error) {
	if credentialsPath == "" {
		return nil, ErrNoCredentials
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials file %s: %w", credentialsPath, err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	log.Println("Firebase auth client initialized successfully!")
	return authClient, nil
}

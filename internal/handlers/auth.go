package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/photo-feed/backend/internal/middleware"
	"github.com/anonto42/photo-feed/backend/internal/models"
	"github.com/anonto42/photo-feed/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is the lifetime of locally issued JWTs
const tokenTTL = 72 * time.Hour

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   middleware.TokenVerifier
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler. A nil firebaseAuth selects local
// accounts with HS256 JWTs; otherwise clients authenticate with Firebase ID
// tokens and only the profile-linking route is served.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth middleware.TokenVerifier, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes. In JWT mode
// signup and signin issue the bearer tokens the API accepts. In Firebase mode
// the API accepts Firebase ID tokens directly and firebase-login only creates
// or links the local profile those tokens resolve to.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
		return
	}
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return toHTTPError(err, "User")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password").SetInternal(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
		}
		return toHTTPError(err, "User")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup").SetInternal(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": user.ToCompact()})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return toHTTPError(err, "User")
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token").SetInternal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user.ToCompact()})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and links or creates the local
// user it belongs to.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token").SetInternal(err)
	}

	uid := token.UID
	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(email)
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
		if email != "" {
			user.Email = email
		}
		if name != "" {
			user.Name = name
		}
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return toHTTPError(err, "User")
		}
	case errors.Is(err, repositories.ErrNotFound):
		user, err = h.linkFirebaseUser(c, uid, email, name)
		if err != nil {
			return err
		}
	default:
		return toHTTPError(err, "User")
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user.ToCompact()})
}

// linkFirebaseUser attaches uid to the user registered under email, or
// creates a new user when there is none.
func (h *AuthHandler) linkFirebaseUser(c echo.Context, uid, email, name string) (*models.User, error) {
	ctx := c.Request().Context()
	if email == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email")
	}

	user, err := h.userRepository.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.FirebaseUID = &uid
		if err := h.userRepository.UpdateUser(ctx, user); err != nil {
			return nil, toHTTPError(err, "User")
		}
		return user, nil
	case errors.Is(err, repositories.ErrNotFound):
		user = &models.User{Name: name, Email: email, FirebaseUID: &uid}
		if err := h.userRepository.CreateUser(ctx, user); err != nil {
			return nil, toHTTPError(err, "User")
		}
		return user, nil
	default:
		return nil, toHTTPError(err, "User")
	}
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

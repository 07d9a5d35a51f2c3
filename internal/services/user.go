package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"habit-tracker/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// UserService handles registration, login and token validation
type UserService struct {
	userRepo   UserStore
	jwtSecret  string
	jwtExpDays int
}

// NewUserService creates a new user service
func NewUserService(userRepo UserStore, jwtSecret string, jwtExpDays int) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		jwtExpDays: jwtExpDays,
	}
}

// RegisterRequest represents a request to create an account
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"required,max=50"`
}

// LoginRequest represents a request to sign in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, s.jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("%w: failed to parse token: %v", ErrUnauthorized, err)
	}

	if !token.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: user_id not found in token", ErrUnauthorized)
	}

	return userID, nil
}

// Register creates an account and returns it with a fresh token
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	displayName := strings.TrimSpace(req.DisplayName)
	if email == "" || displayName == "" {
		return nil, invalid("email and display name are required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: email is already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{User: *user, Token: token}, nil
}

// Login verifies credentials and returns the user with a fresh token
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{User: *user, Token: token}, nil
}

// GetUser returns the user behind a validated token
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdatePushToken registers or clears the APNs device token of a user
func (s *UserService) UpdatePushToken(ctx context.Context, userID, token string) error {
	var pushToken *string
	if token = strings.TrimSpace(token); token != "" {
		pushToken = &token
	}
	if err := s.userRepo.UpdatePushToken(ctx, userID, pushToken); err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	return nil
}

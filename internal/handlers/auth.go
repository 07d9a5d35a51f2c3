package handlers

import (
	"net/http"

	"habit-tracker/internal/middleware"
	"habit-tracker/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and the current-user lookup
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.userService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, log.Error().Str("email", req.Email), err, "Failed to register")
		return
	}

	log.Info().
		Str("user_id", resp.ID).
		Msg("User registered")

	respondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.userService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, log.Warn().Str("email", req.Email), err, "Failed to log in")
		return
	}

	log.Info().
		Str("user_id", resp.ID).
		Msg("User logged in")

	respondJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID), err, "Failed to get user")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

package handlers

import (
	"net/http"

	"habit-tracker/internal/middleware"
	"habit-tracker/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// multipart overhead allowed on top of the avatar itself
const avatarFormSlack = 1 << 20

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *services.ProfileService
	userService    *services.UserService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, userService *services.UserService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		userService:    userService,
	}
}

// PushTokenRequest registers a device for push notifications
type PushTokenRequest struct {
	Token string `json:"token"`
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.profileService.GetProfile(ctx, userID)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID), err, "Failed to get profile")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.profileService.UpdateProfile(ctx, userID, req)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID), err, "Failed to update profile")
		return
	}

	log.Info().Str("user_id", userID).Msg("Profile updated")

	respondJSON(w, http.StatusOK, user)
}

// UpdateAvatar handles PUT /api/profile/avatar (multipart field "avatar")
func (h *ProfileHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarSize+avatarFormSlack)
	if err := r.ParseMultipartForm(services.MaxAvatarSize); err != nil {
		respondError(w, "Invalid or too large upload", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		respondError(w, "avatar file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		sniff := make([]byte, 512)
		n, _ := file.Read(sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, 0); err != nil {
			respondError(w, "Failed to read upload", http.StatusBadRequest)
			return
		}
	}

	user, err := h.profileService.UpdateAvatar(ctx, userID, file, header.Size, contentType)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID).Str("filename", header.Filename), err, "Failed to upload avatar")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("avatar_url", user.AvatarURL).
		Msg("Avatar updated")

	respondJSON(w, http.StatusOK, user)
}

// UpdatePushToken handles PUT /api/profile/push-token
func (h *ProfileHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.userService.UpdatePushToken(ctx, userID, req.Token); err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID), err, "Failed to update push token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetUserProfile handles GET /api/profile/{userId}
func (h *ProfileHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewerID := middleware.GetUserID(ctx)
	userID := chi.URLParam(r, "userId")

	profile, err := h.profileService.GetFriendProfile(ctx, viewerID, userID)
	if err != nil {
		respondServiceError(w, log.Warn().Str("user_id", viewerID).Str("target_id", userID), err, "Failed to get profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

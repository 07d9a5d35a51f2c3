package handlers

import (
	"net/http"

	"habit-tracker/internal/middleware"
	"habit-tracker/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FriendHandler handles friend-related HTTP requests
type FriendHandler struct {
	friendService *services.FriendService
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friendService *services.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// ListFriends handles GET /api/friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	overview, err := h.friendService.Overview(ctx, userID)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID), err, "Failed to list friends")
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// Search handles GET /api/friends/search?q=
func (h *FriendHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	results, err := h.friendService.Search(ctx, userID, r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID), err, "Failed to search users")
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// SendRequest handles POST /api/friends/request
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.FriendRequestBody
	if !decodeBody(w, r, &req) {
		return
	}

	friendship, err := h.friendService.SendRequest(ctx, userID, req.RecipientID)
	if err != nil {
		respondServiceError(w,
			log.Warn().Str("user_id", userID).Str("recipient_id", req.RecipientID),
			err, "Failed to send request")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("recipient_id", req.RecipientID).
		Str("friendship_id", friendship.ID).
		Msg("Friend request sent")

	respondJSON(w, http.StatusCreated, friendship)
}

// RespondRequest handles PUT /api/friends/request/{id}
func (h *FriendHandler) RespondRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := chi.URLParam(r, "id")

	var req services.RespondRequestBody
	if !decodeBody(w, r, &req) {
		return
	}

	friendship, err := h.friendService.Respond(ctx, userID, requestID, req.Status)
	if err != nil {
		respondServiceError(w,
			log.Warn().Str("user_id", userID).Str("request_id", requestID),
			err, "Failed to answer request")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", requestID).
		Str("status", string(friendship.Status)).
		Msg("Friend request answered")

	respondJSON(w, http.StatusOK, friendship)
}

// RemoveFriend handles DELETE /api/friends/{id}
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	friendshipID := chi.URLParam(r, "id")

	if err := h.friendService.Remove(ctx, userID, friendshipID); err != nil {
		respondServiceError(w,
			log.Warn().Str("user_id", userID).Str("friendship_id", friendshipID),
			err, "Failed to remove friendship")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("friendship_id", friendshipID).
		Msg("Friendship removed")

	w.WriteHeader(http.StatusNoContent)
}

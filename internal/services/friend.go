package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"habit-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const searchLimit = 10

// FriendService handles friend requests and friendships
type FriendService struct {
	friendshipRepo FriendshipStore
	userRepo       UserStore
	notifier       Notifier
	pusher         Pusher
}

// NewFriendService creates a new friend service
func NewFriendService(friendshipRepo FriendshipStore, userRepo UserStore, notifier Notifier, pusher Pusher) *FriendService {
	return &FriendService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		pusher:         pusher,
	}
}

// FriendRequestBody represents a request to befriend another user
type FriendRequestBody struct {
	RecipientID string `json:"recipientId" validate:"required"`
}

// RespondRequestBody represents the answer to a pending friend request
type RespondRequestBody struct {
	Status models.FriendshipStatus `json:"status" validate:"required,oneof=accepted declined"`
}

// Overview lists accepted friends and pending requests addressed to userID
func (s *FriendService) Overview(ctx context.Context, userID string) (*models.FriendsOverview, error) {
	accepted, err := s.friendshipRepo.ListForUser(ctx, userID, models.FriendshipAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	pending, err := s.friendshipRepo.ListForUser(ctx, userID, models.FriendshipPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	overview := &models.FriendsOverview{
		Friends:          make([]models.Friend, 0, len(accepted)),
		IncomingRequests: make([]models.FriendRequest, 0),
	}

	for _, f := range accepted {
		other, err := s.userRepo.GetByID(ctx, f.Other(userID))
		if err != nil {
			log.Warn().Err(err).Str("friendship_id", f.ID).Msg("Skipping friendship with missing user")
			continue
		}
		overview.Friends = append(overview.Friends, models.Friend{
			FriendshipID: f.ID,
			User:         other.Summary(),
			Since:        f.UpdatedAt,
		})
	}

	for _, f := range pending {
		if f.RecipientID != userID {
			continue
		}
		requester, err := s.userRepo.GetByID(ctx, f.RequesterID)
		if err != nil {
			log.Warn().Err(err).Str("friendship_id", f.ID).Msg("Skipping request with missing user")
			continue
		}
		overview.IncomingRequests = append(overview.IncomingRequests, models.FriendRequest{
			ID:        f.ID,
			Requester: requester.Summary(),
			CreatedAt: f.CreatedAt,
		})
	}

	return overview, nil
}

// Search finds other users by display name or email
func (s *FriendService) Search(ctx context.Context, userID, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	results := make([]models.UserSummary, 0)
	if query == "" {
		return results, nil
	}

	users, err := s.userRepo.Search(ctx, query, userID, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	for _, u := range users {
		results = append(results, u.Summary())
	}
	return results, nil
}

// SendRequest creates a pending friendship from requesterID to recipientID.
// A previously declined pairing is reopened as a new request.
func (s *FriendService) SendRequest(ctx context.Context, requesterID, recipientID string) (*models.Friendship, error) {
	if requesterID == recipientID {
		return nil, fmt.Errorf("%w: cannot send a friend request to yourself", ErrInvalidInput)
	}

	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}

	now := time.Now().UTC()
	existing, err := s.friendshipRepo.FindBetween(ctx, requesterID, recipientID)
	switch {
	case err == nil:
		switch existing.Status {
		case models.FriendshipAccepted:
			return nil, fmt.Errorf("%w: you are already friends", ErrConflict)
		case models.FriendshipPending:
			return nil, fmt.Errorf("%w: a friend request is already pending", ErrConflict)
		}
		if err := s.friendshipRepo.Reopen(ctx, existing.ID, requesterID, recipientID, now); err != nil {
			return nil, fmt.Errorf("failed to reopen friend request: %w", err)
		}
		existing.RequesterID = requesterID
		existing.RecipientID = recipientID
		existing.Status = models.FriendshipPending
		existing.CreatedAt = now
		existing.UpdatedAt = now
		s.announceRequest(ctx, existing, recipient)
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}

	friendship := &models.Friendship{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      models.FriendshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.friendshipRepo.Create(ctx, friendship); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, fmt.Errorf("%w: a friend request is already pending", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	s.announceRequest(ctx, friendship, recipient)
	return friendship, nil
}

// announceRequest notifies the recipient over websocket and push
func (s *FriendService) announceRequest(ctx context.Context, f *models.Friendship, recipient *models.User) {
	requester, err := s.userRepo.GetByID(ctx, f.RequesterID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", f.RequesterID).Msg("Failed to load requester for notification")
		return
	}

	s.notifier.Notify(recipient.ID, WSMessage{
		Type:      EventFriendRequest,
		Timestamp: time.Now().UnixMilli(),
		Data: map[string]interface{}{
			"request_id": f.ID,
			"requester":  requester.Summary(),
		},
	})

	if recipient.PushToken == nil {
		return
	}
	body := requester.DisplayName + " wants to be your friend"
	if err := s.pusher.Push(ctx, *recipient.PushToken, "New friend request", body); err != nil {
		log.Warn().Err(err).Str("user_id", recipient.ID).Msg("Failed to push friend request")
	}
}

// Respond accepts or declines a pending request addressed to userID
func (s *FriendService) Respond(ctx context.Context, userID, requestID string, status models.FriendshipStatus) (*models.Friendship, error) {
	if status != models.FriendshipAccepted && status != models.FriendshipDeclined {
		return nil, fmt.Errorf("%w: status must be accepted or declined", ErrInvalidInput)
	}

	f, err := s.friendshipRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	if f.RecipientID != userID {
		return nil, fmt.Errorf("%w: only the recipient can answer a friend request", ErrForbidden)
	}
	if f.Status != models.FriendshipPending {
		return nil, fmt.Errorf("%w: friend request is no longer pending", ErrConflict)
	}

	now := time.Now().UTC()
	if err := s.friendshipRepo.UpdateStatus(ctx, f.ID, status, now); err != nil {
		return nil, fmt.Errorf("failed to update friend request: %w", err)
	}
	f.Status = status
	f.UpdatedAt = now

	if status == models.FriendshipAccepted {
		s.notifier.Notify(f.RequesterID, WSMessage{
			Type:      EventFriendRequestAccepted,
			Timestamp: now.UnixMilli(),
			Data: map[string]interface{}{
				"friendship_id": f.ID,
				"user_id":       userID,
			},
		})
	}
	return f, nil
}

// Remove deletes a friendship the user is part of
func (s *FriendService) Remove(ctx context.Context, userID, friendshipID string) error {
	f, err := s.friendshipRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return fmt.Errorf("failed to get friendship: %w", err)
	}
	if !f.Involves(userID) {
		return fmt.Errorf("%w: user is not a member of this friendship", ErrForbidden)
	}

	if err := s.friendshipRepo.Delete(ctx, friendshipID); err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}

	s.notifier.Notify(f.Other(userID), WSMessage{
		Type:      EventFriendRemoved,
		Timestamp: time.Now().UnixMilli(),
		Data: map[string]interface{}{
			"friendship_id": f.ID,
			"user_id":       userID,
		},
	})
	return nil
}

// AreFriends reports whether the two users have an accepted friendship
func (s *FriendService) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	f, err := s.friendshipRepo.FindBetween(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return f.Status == models.FriendshipAccepted, nil
}

package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"habit-tracker/internal/models"

	"github.com/google/uuid"
)

// MaxAvatarSize bounds avatar uploads
const MaxAvatarSize = 5 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ProfileService handles the user's own profile and read-only friend profiles
type ProfileService struct {
	userRepo   UserStore
	habitRepo  HabitStore
	friendship *FriendService
	avatars    AvatarStorage
}

// NewProfileService creates a new profile service. avatars may be nil, in which
// case avatar uploads report ErrUnavailable.
func NewProfileService(userRepo UserStore, habitRepo HabitStore, friendship *FriendService, avatars AvatarStorage) *ProfileService {
	return &ProfileService{
		userRepo:   userRepo,
		habitRepo:  habitRepo,
		friendship: friendship,
		avatars:    avatars,
	}
}

// UpdateProfileRequest represents a profile text update
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=50"`
	Bio         string `json:"bio" validate:"max=280"`
}

// GetProfile returns the user's own profile
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return user, nil
}

// UpdateProfile sets display name and bio
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, invalid("display name is required")
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, displayName, strings.TrimSpace(req.Bio), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdateAvatar stores a new avatar image and points the profile at it
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, body io.Reader, size int64, contentType string) (*models.User, error) {
	if s.avatars == nil {
		return nil, fmt.Errorf("%w: avatar storage is not configured", ErrUnavailable)
	}

	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, invalid("unsupported image type %q", contentType)
	}
	if size <= 0 || size > MaxAvatarSize {
		return nil, invalid("avatar must be between 1 byte and %d MiB", MaxAvatarSize>>20)
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.New().String(), ext)
	url, err := s.avatars.Upload(ctx, key, contentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	user, err := s.userRepo.UpdateAvatar(ctx, userID, url, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	return user, nil
}

// GetFriendProfile returns another user's profile and habits. Only the user
// themselves and accepted friends may see it.
func (s *ProfileService) GetFriendProfile(ctx context.Context, viewerID, userID string) (*models.FriendProfile, error) {
	if viewerID != userID {
		ok, err := s.friendship.AreFriends(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: profile is only visible to friends", ErrForbidden)
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	habits, err := s.habitRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	profile := &models.FriendProfile{User: *user, Habits: make([]models.Habit, 0, len(habits))}
	for _, h := range habits {
		profile.Habits = append(profile.Habits, *h)
	}
	return profile, nil
}

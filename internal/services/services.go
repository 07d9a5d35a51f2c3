package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habit-tracker/internal/models"
	"habit-tracker/internal/repository"
)

// Errors returned by services. Handlers map them to HTTP status codes.
var (
	ErrNotFound     = repository.ErrNotFound
	ErrDuplicate    = repository.ErrDuplicate
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
)

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id, displayName, bio string, updatedAt time.Time) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string, updatedAt time.Time) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
	Search(ctx context.Context, q, excludeID string, limit int) ([]*models.User, error)
}

// HabitStore persists habits and completions
type HabitStore interface {
	Create(ctx context.Context, habit *models.Habit) error
	GetByID(ctx context.Context, id string) (*models.Habit, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Habit, error)
	Update(ctx context.Context, habit *models.Habit) error
	Delete(ctx context.Context, id string) error
	ToggleCompletion(ctx context.Context, habitID string, day time.Time, completionID string) (bool, error)
}

// FriendshipStore persists friendships
type FriendshipStore interface {
	Create(ctx context.Context, f *models.Friendship) error
	GetByID(ctx context.Context, id string) (*models.Friendship, error)
	FindBetween(ctx context.Context, userA, userB string) (*models.Friendship, error)
	Reopen(ctx context.Context, id, requesterID, recipientID string, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string, status models.FriendshipStatus) ([]*models.Friendship, error)
}

// Notifier delivers realtime events to connected users
type Notifier interface {
	Notify(userID string, msg WSMessage)
}

// invalid wraps a validation message in ErrInvalidInput
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// friendIDs lists the users with an accepted friendship with userID
func friendIDs(ctx context.Context, friendships FriendshipStore, userID string) ([]string, error) {
	accepted, err := friendships.ListForUser(ctx, userID, models.FriendshipAccepted)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(accepted))
	for _, f := range accepted {
		ids = append(ids, f.Other(userID))
	}
	return ids, nil
}

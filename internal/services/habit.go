package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"habit-tracker/internal/calendar"
	"habit-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultHabitColor is used when a habit is created without a color tag
const DefaultHabitColor = "#ef4444"

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// HabitService handles habit CRUD and completion toggling
type HabitService struct {
	habitRepo      HabitStore
	friendshipRepo FriendshipStore
	cache          AnalyticsCache
	notifier       Notifier
}

// NewHabitService creates a new habit service
func NewHabitService(habitRepo HabitStore, friendshipRepo FriendshipStore, cache AnalyticsCache, notifier Notifier) *HabitService {
	return &HabitService{
		habitRepo:      habitRepo,
		friendshipRepo: friendshipRepo,
		cache:          cache,
		notifier:       notifier,
	}
}

// HabitRequest represents the body of habit create and update calls
type HabitRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// ToggleRequest represents the body of a toggle-completion call
type ToggleRequest struct {
	Date string `json:"date" validate:"required"`
}

// ParseCompletionDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns
// midnight UTC of the calendar day it names. Timestamps use their own offset.
func ParseCompletionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, invalid("date must be YYYY-MM-DD or RFC 3339, got %q", s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func (r *HabitRequest) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Name == "" {
		return invalid("name is required")
	}
	if r.Color == "" {
		r.Color = DefaultHabitColor
	}
	if !colorPattern.MatchString(r.Color) {
		return invalid("color must be a #rrggbb hex value")
	}
	return nil
}

// ListHabits returns the caller's habits with completions
func (s *HabitService) ListHabits(ctx context.Context, userID string) ([]*models.Habit, error) {
	habits, err := s.habitRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

// CreateHabit creates a habit owned by userID
func (s *HabitService) CreateHabit(ctx context.Context, userID string, req HabitRequest) (*models.Habit, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	habit := &models.Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Completions: make([]models.Completion, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	s.invalidateAnalytics(ctx, userID)
	return habit, nil
}

// GetOwnedHabit loads a habit and checks that userID owns it
func (s *HabitService) GetOwnedHabit(ctx context.Context, userID, habitID string) (*models.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	if habit.UserID != userID {
		// other users' habits are indistinguishable from missing ones
		return nil, fmt.Errorf("habit: %w", ErrNotFound)
	}
	return habit, nil
}

// UpdateHabit changes name, description and color
func (s *HabitService) UpdateHabit(ctx context.Context, userID, habitID string, req HabitRequest) (*models.Habit, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	habit, err := s.GetOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	habit.Name = req.Name
	habit.Description = req.Description
	habit.Color = req.Color
	habit.UpdatedAt = time.Now().UTC()

	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	s.invalidateAnalytics(ctx, userID)
	return habit, nil
}

// DeleteHabit deletes a habit if the user owns it
func (s *HabitService) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if _, err := s.GetOwnedHabit(ctx, userID, habitID); err != nil {
		return err
	}

	if err := s.habitRepo.Delete(ctx, habitID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	s.invalidateAnalytics(ctx, userID)
	return nil
}

// ToggleCompletion flips the completion state of the habit for the given day and
// returns the updated habit
func (s *HabitService) ToggleCompletion(ctx context.Context, userID, habitID, date string) (*models.Habit, error) {
	day, err := ParseCompletionDate(date)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetOwnedHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}

	added, err := s.habitRepo.ToggleCompletion(ctx, habitID, day, uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("failed to toggle completion: %w", err)
	}

	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload habit: %w", err)
	}

	s.invalidateAnalytics(ctx, userID)
	s.notifyFriends(ctx, userID, habit, day, added)
	return habit, nil
}

// Reminder builds a calendar reminder link for one of the caller's habits
func (s *HabitService) Reminder(ctx context.Context, userID, habitID string, opts calendar.ReminderOptions, now time.Time) (*models.Reminder, error) {
	habit, err := s.GetOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	reminder, err := calendar.ReminderLink(habit, opts, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return reminder, nil
}

func (s *HabitService) invalidateAnalytics(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to invalidate analytics cache")
	}
}

// notifyFriends tells online friends about a completion change
func (s *HabitService) notifyFriends(ctx context.Context, userID string, habit *models.Habit, day time.Time, completed bool) {
	friends, err := friendIDs(ctx, s.friendshipRepo, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to list friends for progress event")
		return
	}

	msg := WSMessage{
		Type:      EventFriendProgress,
		Timestamp: time.Now().UnixMilli(),
		Data: map[string]interface{}{
			"user_id":   userID,
			"habit_id":  habit.ID,
			"name":      habit.Name,
			"date":      day.Format(time.DateOnly),
			"completed": completed,
			"streak":    habit.Streak(),
		},
	}
	for _, friendID := range friends {
		s.notifier.Notify(friendID, msg)
	}
}

// Package store is the client-side cache of the signed-in user's data. Every
// mutation goes through the API first and only touches local state once the
// server has answered; failures leave state untouched and are reported as a
// single notification.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"habit-tracker/internal/calendar"
	"habit-tracker/internal/client"
	"habit-tracker/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// User-facing messages
const (
	msgLoadFailed        = "Failed to load app data. Please refresh."
	msgHabitAdded        = "Habit added!"
	msgAddFailed         = "Failed to add habit"
	msgToggleFailed      = "Failed to update completion"
	msgHabitDeleted      = "Habit deleted!"
	msgDeleteFailed      = "Failed to delete habit"
	msgRequestAccepted   = "Friend request accepted!"
	msgAcceptFailed      = "Failed to accept request"
	msgRequestDeclined   = "Friend request declined"
	msgDeclineFailed     = "Failed to decline request"
	msgFriendshipRemoved = "Friendship removed"
	msgRemoveFailed      = "Failed to remove friendship"
	msgSearchFailed      = "Failed to search for users"
	msgRequestSent       = "Friend request sent!"
	msgRequestFailed     = "Failed to send request"
	msgProfileFailed     = "Failed to load profile"
)

// State is a copy of everything the store holds
type State struct {
	Habits           []models.Habit
	Friends          []models.Friend
	IncomingRequests []models.FriendRequest
	Analytics        *models.Analytics
	SearchResults    []models.UserSummary
	Loaded           bool
}

// DashboardStats are the summary cards of the dashboard
type DashboardStats struct {
	TotalHabits    int
	CompletedToday int
	TotalStreaks   int
	TodaysRate     int
}

// Store caches habits, friends and analytics for one user
type Store struct {
	api      *client.Client
	notifier Notifier
	now      func() time.Time

	mu    sync.RWMutex
	state State
}

// New creates an empty store. A nil notifier drops notifications.
func New(api *client.Client, notifier Notifier) *Store {
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	return &Store{
		api:      api,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *Store) success(msg string) {
	s.notifier.Notify(Notification{Level: LevelSuccess, Message: msg})
}

func (s *Store) failure(err error, msg string) error {
	log.Debug().Err(err).Msg(msg)
	s.notifier.Notify(Notification{Level: LevelError, Message: msg})
	return err
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Habits:           make([]models.Habit, len(s.state.Habits)),
		Friends:          append([]models.Friend(nil), s.state.Friends...),
		IncomingRequests: append([]models.FriendRequest(nil), s.state.IncomingRequests...),
		SearchResults:    append([]models.UserSummary(nil), s.state.SearchResults...),
		Analytics:        s.state.Analytics,
		Loaded:           s.state.Loaded,
	}
	for i, h := range s.state.Habits {
		h.Completions = append([]models.Completion(nil), h.Completions...)
		st.Habits[i] = h
	}
	return st
}

// Habits returns a copy of the cached habits
func (s *Store) Habits() []models.Habit {
	return s.State().Habits
}

// FetchAll loads habits, friends and analytics in parallel. Either all three
// replace the cached state or none do.
func (s *Store) FetchAll(ctx context.Context) error {
	var (
		habits    []models.Habit
		friends   *models.FriendsOverview
		analytics *models.Analytics
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		habits, err = s.api.Habits(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		friends, err = s.api.Friends(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		analytics, err = s.api.Analytics(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.failure(err, msgLoadFailed)
	}

	s.mu.Lock()
	s.state.Habits = habits
	s.state.Friends = friends.Friends
	s.state.IncomingRequests = friends.IncomingRequests
	s.state.Analytics = analytics
	s.state.Loaded = true
	s.mu.Unlock()
	return nil
}

// refreshAnalytics reloads analytics after a habit change. A failure keeps
// the old snapshot without notifying.
func (s *Store) refreshAnalytics(ctx context.Context) {
	analytics, err := s.api.Analytics(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Analytics refresh failed")
		return
	}
	s.mu.Lock()
	s.state.Analytics = analytics
	s.mu.Unlock()
}

// AddHabit creates a habit and appends it to the list
func (s *Store) AddHabit(ctx context.Context, in client.HabitInput) (*models.Habit, error) {
	habit, err := s.api.CreateHabit(ctx, in)
	if err != nil {
		return nil, s.failure(err, msgAddFailed)
	}

	s.mu.Lock()
	s.state.Habits = append(s.state.Habits, *habit)
	s.mu.Unlock()

	s.success(msgHabitAdded)
	s.refreshAnalytics(ctx)
	return habit, nil
}

// ToggleCompletion flips one day of a habit and replaces the cached habit
// with the server's version
func (s *Store) ToggleCompletion(ctx context.Context, habitID, date string) (*models.Habit, error) {
	habit, err := s.api.ToggleCompletion(ctx, habitID, date)
	if err != nil {
		return nil, s.failure(err, msgToggleFailed)
	}

	s.mu.Lock()
	for i := range s.state.Habits {
		if s.state.Habits[i].ID == habitID {
			s.state.Habits[i] = *habit
		}
	}
	s.mu.Unlock()

	s.refreshAnalytics(ctx)
	return habit, nil
}

// DeleteHabit deletes a habit and drops exactly that entry from the list
func (s *Store) DeleteHabit(ctx context.Context, habitID string) error {
	if err := s.api.DeleteHabit(ctx, habitID); err != nil {
		return s.failure(err, msgDeleteFailed)
	}

	s.mu.Lock()
	kept := s.state.Habits[:0]
	for _, h := range s.state.Habits {
		if h.ID != habitID {
			kept = append(kept, h)
		}
	}
	s.state.Habits = kept
	s.mu.Unlock()

	s.success(msgHabitDeleted)
	s.refreshAnalytics(ctx)
	return nil
}

// AcceptRequest accepts an incoming friend request and reloads everything
func (s *Store) AcceptRequest(ctx context.Context, requestID string) error {
	if _, err := s.api.RespondRequest(ctx, requestID, models.FriendshipAccepted); err != nil {
		return s.failure(err, msgAcceptFailed)
	}
	s.success(msgRequestAccepted)
	return s.FetchAll(ctx)
}

// DeclineRequest declines an incoming friend request and reloads everything
func (s *Store) DeclineRequest(ctx context.Context, requestID string) error {
	if _, err := s.api.RespondRequest(ctx, requestID, models.FriendshipDeclined); err != nil {
		return s.failure(err, msgDeclineFailed)
	}
	s.success(msgRequestDeclined)
	return s.FetchAll(ctx)
}

// RemoveFriendship ends a friendship and reloads everything
func (s *Store) RemoveFriendship(ctx context.Context, friendshipID string) error {
	if err := s.api.RemoveFriendship(ctx, friendshipID); err != nil {
		return s.failure(err, msgRemoveFailed)
	}
	s.success(msgFriendshipRemoved)
	return s.FetchAll(ctx)
}

// SendRequest sends a friend request. The server's message is shown when the
// request is rejected.
func (s *Store) SendRequest(ctx context.Context, recipientID string) error {
	if _, err := s.api.SendFriendRequest(ctx, recipientID); err != nil {
		msg := msgRequestFailed
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return s.failure(err, msg)
	}
	s.success(msgRequestSent)
	return s.FetchAll(ctx)
}

// SearchUsers replaces the search results. An empty query clears them without
// calling the server.
func (s *Store) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	if query == "" {
		s.mu.Lock()
		s.state.SearchResults = nil
		s.mu.Unlock()
		return nil, nil
	}

	results, err := s.api.SearchUsers(ctx, query)
	if err != nil {
		return nil, s.failure(err, msgSearchFailed)
	}

	s.mu.Lock()
	s.state.SearchResults = results
	s.mu.Unlock()
	return results, nil
}

// FriendProfile loads another user's read-only profile. It is not cached.
func (s *Store) FriendProfile(ctx context.Context, userID string) (*models.FriendProfile, error) {
	profile, err := s.api.UserProfile(ctx, userID)
	if err != nil {
		return nil, s.failure(err, msgProfileFailed)
	}
	return profile, nil
}

// Stats derives the dashboard summary from the cached habits
func (s *Store) Stats() DashboardStats {
	return ComputeStats(s.Habits(), s.now())
}

// Week builds the weekly completion grid around ref
func (s *Store) Week(ref time.Time) calendar.Grid {
	return calendar.BuildGrid(s.Habits(), ref)
}

// ComputeStats derives dashboard stats from habits as of now
func ComputeStats(habits []models.Habit, now time.Time) DashboardStats {
	stats := DashboardStats{TotalHabits: len(habits)}
	for i := range habits {
		if calendar.CompletedOn(&habits[i], now) {
			stats.CompletedToday++
		}
		stats.TotalStreaks += habits[i].Streak()
	}
	if stats.TotalHabits > 0 {
		stats.TodaysRate = int(float64(stats.CompletedToday)/float64(stats.TotalHabits)*100 + 0.5)
	}
	return stats
}

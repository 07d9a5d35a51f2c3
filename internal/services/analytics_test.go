package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/models"
)

func daysBack(now time.Time, n int) []models.Completion {
	y, m, d := now.Date()
	completions := make([]models.Completion, 0, n)
	for i := 0; i < n; i++ {
		completions = append(completions, models.Completion{Date: time.Date(y, m, d-i, 0, 0, 0, 0, time.UTC)})
	}
	return completions
}

func TestComputeAnalytics(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)

	habits := []*models.Habit{
		{ID: "a", Name: "Read", Color: "#111111", Completions: daysBack(now, 8)},
		{ID: "b", Name: "Run", Color: "#222222", Completions: daysBack(now.AddDate(0, 0, -1), 2)},
		{ID: "c", Name: "Write", Color: "#333333"},
	}

	a := ComputeAnalytics(habits, now)

	assert.Equal(t, 10, a.Stats.TotalCompletions)
	assert.Equal(t, 8, a.Stats.BestStreak)
	assert.Equal(t, 3.3, a.Stats.AverageStreak)
	assert.Equal(t, 1, a.Stats.CompletionsToday)

	assert.Equal(t, 33, a.Summary.TodaysCompletionRate)
	assert.Equal(t, 1, a.Summary.HabitsWith7DayStreak)
	assert.Equal(t, 0, a.Summary.HabitsWith30DayStreak)

	require.Len(t, a.Charts.DailyProgress, 30)
	last := a.Charts.DailyProgress[29]
	assert.Equal(t, "2024-03-06", last.Date)
	assert.Equal(t, 1, last.Completions)
	assert.Equal(t, "2024-03-05", a.Charts.DailyProgress[28].Date)
	assert.Equal(t, 2, a.Charts.DailyProgress[28].Completions)

	require.Len(t, a.Charts.WeeklyProgress, 7)
	assert.Equal(t, "Mon", a.Charts.WeeklyProgress[0].Day)
	assert.Equal(t, 2, a.Charts.WeeklyProgress[0].Completions)
	assert.Equal(t, 2, a.Charts.WeeklyProgress[1].Completions)
	assert.Equal(t, 1, a.Charts.WeeklyProgress[2].Completions)
	assert.Equal(t, 0, a.Charts.WeeklyProgress[3].Completions)
	assert.Equal(t, "Sun", a.Charts.WeeklyProgress[6].Day)

	require.Len(t, a.Charts.HabitStreaks, 3)
	assert.Equal(t, models.HabitStreakPoint{Name: "Write", Streak: 0}, a.Charts.HabitStreaks[2])

	// habits without completions are left out of the distribution
	require.Len(t, a.Charts.HabitDistribution, 2)
	assert.Equal(t, models.DistributionSlice{Name: "Read", Completions: 8, Fill: "#111111"}, a.Charts.HabitDistribution[0])
}

func TestComputeAnalyticsEmpty(t *testing.T) {
	a := ComputeAnalytics(nil, time.Now())

	assert.Zero(t, a.Stats.AverageStreak)
	assert.Zero(t, a.Summary.TodaysCompletionRate)
	assert.Len(t, a.Charts.DailyProgress, 30)
	assert.NotNil(t, a.Charts.HabitStreaks)
	assert.NotNil(t, a.Charts.HabitDistribution)
}

func TestGetAnalyticsUsesCacheUntilInvalidated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.register(t, "ada@example.com", "Ada")
	habit, err := e.habitService.CreateHabit(ctx, ada.ID, HabitRequest{Name: "Read"})
	require.NoError(t, err)

	first, err := e.analyticsService.GetAnalytics(ctx, ada.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Stats.TotalCompletions)

	cached, ok, _ := e.cache.Get(ctx, ada.ID, "UTC")
	require.True(t, ok)
	assert.Same(t, first, cached)

	_, err = e.habitService.ToggleCompletion(ctx, ada.ID, habit.ID, time.Now().UTC().Format(time.DateOnly))
	require.NoError(t, err)

	second, err := e.analyticsService.GetAnalytics(ctx, ada.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Stats.TotalCompletions)
}

func TestGetAnalyticsCountsTodayInCallerZone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := e.register(t, "ada@example.com", "Ada")
	habit, err := e.habitService.CreateHabit(ctx, ada.ID, HabitRequest{Name: "Read"})
	require.NoError(t, err)

	// 21:00 on March 5th in New York
	e.analyticsService.now = func() time.Time { return time.Date(2024, 3, 6, 2, 0, 0, 0, time.UTC) }
	_, err = e.habitService.ToggleCompletion(ctx, ada.ID, habit.ID, "2024-03-05")
	require.NoError(t, err)

	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	local, err := e.analyticsService.GetAnalytics(ctx, ada.ID, newYork)
	require.NoError(t, err)
	assert.Equal(t, 1, local.Stats.CompletionsToday)
	assert.Equal(t, 100, local.Summary.TodaysCompletionRate)
	assert.Equal(t, "2024-03-05", local.Charts.DailyProgress[29].Date)

	utc, err := e.analyticsService.GetAnalytics(ctx, ada.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, utc.Stats.CompletionsToday)
	assert.Equal(t, "2024-03-06", utc.Charts.DailyProgress[29].Date)

	// each zone keeps its own cached snapshot
	again, err := e.analyticsService.GetAnalytics(ctx, ada.ID, newYork)
	require.NoError(t, err)
	assert.Same(t, local, again)
}

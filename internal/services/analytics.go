package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"habit-tracker/internal/calendar"
	"habit-tracker/internal/models"

	"github.com/rs/zerolog/log"
)

const dailyProgressDays = 30

var weekdayLabels = [calendar.DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// AnalyticsService computes per-user habit statistics
type AnalyticsService struct {
	habitRepo HabitStore
	cache     AnalyticsCache
	ttl       time.Duration
	now       func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(habitRepo HabitStore, cache AnalyticsCache, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{
		habitRepo: habitRepo,
		cache:     cache,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetAnalytics returns the cached snapshot or computes a fresh one. Today is
// the current calendar day in loc; nil means UTC.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, userID string, loc *time.Location) (*models.Analytics, error) {
	if loc == nil {
		loc = time.UTC
	}
	zone := loc.String()

	if cached, ok, err := s.cache.Get(ctx, userID, zone); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Analytics cache read failed")
	} else if ok {
		return cached, nil
	}

	habits, err := s.habitRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	snapshot := ComputeAnalytics(habits, s.now().In(loc))

	if err := s.cache.Set(ctx, userID, zone, snapshot, s.ttl); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Analytics cache write failed")
	}
	return snapshot, nil
}

// ComputeAnalytics derives the analytics snapshot from habits as of now.
// A habit's streak is its total number of completions.
func ComputeAnalytics(habits []*models.Habit, now time.Time) *models.Analytics {
	today := calendar.StartOfDay(now)

	a := &models.Analytics{
		Charts: models.AnalyticsCharts{
			DailyProgress:     make([]models.DailyPoint, 0, dailyProgressDays),
			WeeklyProgress:    make([]models.WeekdayPoint, 0, calendar.DaysPerWeek),
			HabitStreaks:      make([]models.HabitStreakPoint, 0, len(habits)),
			HabitDistribution: make([]models.DistributionSlice, 0, len(habits)),
		},
	}

	completedToday := 0
	for _, h := range habits {
		streak := h.Streak()
		a.Stats.TotalCompletions += streak
		if streak > a.Stats.BestStreak {
			a.Stats.BestStreak = streak
		}
		if streak >= 7 {
			a.Summary.HabitsWith7DayStreak++
		}
		if streak >= 30 {
			a.Summary.HabitsWith30DayStreak++
		}
		if calendar.CompletedOn(h, today) {
			completedToday++
		}

		a.Charts.HabitStreaks = append(a.Charts.HabitStreaks, models.HabitStreakPoint{Name: h.Name, Streak: streak})
		if streak > 0 {
			a.Charts.HabitDistribution = append(a.Charts.HabitDistribution, models.DistributionSlice{
				Name:        h.Name,
				Completions: streak,
				Fill:        h.Color,
			})
		}
	}

	a.Stats.CompletionsToday = completedToday
	if len(habits) > 0 {
		avg := float64(a.Stats.TotalCompletions) / float64(len(habits))
		a.Stats.AverageStreak = math.Round(avg*10) / 10
		a.Summary.TodaysCompletionRate = int(math.Round(float64(completedToday) / float64(len(habits)) * 100))
	}

	for i := dailyProgressDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		a.Charts.DailyProgress = append(a.Charts.DailyProgress, models.DailyPoint{
			Date:        day.Format(time.DateOnly),
			Completions: countOn(habits, day),
		})
	}

	for i, day := range calendar.Week(today) {
		a.Charts.WeeklyProgress = append(a.Charts.WeeklyProgress, models.WeekdayPoint{
			Day:         weekdayLabels[i],
			Completions: countOn(habits, day),
		})
	}

	return a
}

func countOn(habits []*models.Habit, day time.Time) int {
	n := 0
	for _, h := range habits {
		if calendar.CompletedOn(h, day) {
			n++
		}
	}
	return n
}

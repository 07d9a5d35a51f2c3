package calendar

import (
	"testing"
	"time"

	"habit-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekAlwaysStartsOnMonday(t *testing.T) {
	locations := []*time.Location{time.UTC, time.FixedZone("minus5", -5*3600), time.FixedZone("plus9", 9*3600)}
	base := time.Date(2024, time.February, 20, 13, 45, 0, 0, time.UTC)

	for _, loc := range locations {
		for i := 0; i < 400; i++ {
			ref := base.Add(time.Duration(i) * 7 * time.Hour).In(loc)
			days := Week(ref)

			require.Len(t, days, DaysPerWeek)
			assert.Equal(t, time.Monday, days[0].Weekday(), "ref %s", ref)
			for j := 1; j < DaysPerWeek; j++ {
				assert.Equal(t, days[j-1].AddDate(0, 0, 1), days[j])
			}
			assert.False(t, ref.Before(days[0]), "ref %s before week start %s", ref, days[0])
			assert.True(t, ref.Before(days[6].AddDate(0, 0, 1)), "ref %s after week end", ref)
		}
	}
}

func TestWeekStartOnSundayBelongsToPreviousMonday(t *testing.T) {
	sunday := time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, day(2024, time.March, 4), WeekStart(sunday))

	monday := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, day(2024, time.March, 11), WeekStart(monday))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, a.Add(23*time.Hour+59*time.Minute)))
	assert.False(t, SameDay(a, a.Add(24*time.Hour)))
	assert.False(t, SameDay(a, a.Add(-time.Second)))
}

func TestBuildGrid(t *testing.T) {
	habits := []models.Habit{
		{
			ID:   "h1",
			Name: "Read",
			Completions: []models.Completion{
				{Date: day(2024, time.April, 1)},
				{Date: day(2024, time.April, 3)},
				{Date: day(2024, time.March, 31)},
			},
		},
		{ID: "h2", Name: "Run"},
	}

	g := BuildGrid(habits, time.Date(2024, time.April, 4, 18, 0, 0, 0, time.UTC))

	require.Len(t, g.Rows, 2)
	assert.Equal(t, day(2024, time.April, 1), g.Days[0])
	assert.Equal(t, [DaysPerWeek]bool{true, false, true, false, false, false, false}, g.Rows[0].Cells)
	assert.Equal(t, [DaysPerWeek]bool{}, g.Rows[1].Cells)
	assert.Equal(t, [DaysPerWeek]int{1, 0, 1, 0, 0, 0, 0}, g.DayTotals())
}

func TestCompletedOnUsesCalendarDateOfLocalDay(t *testing.T) {
	h := &models.Habit{Completions: []models.Completion{{Date: day(2024, time.June, 5)}}}
	local := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.FixedZone("minus7", -7*3600))

	assert.True(t, CompletedOn(h, local))
	assert.False(t, CompletedOn(h, local.AddDate(0, 0, 1)))
}

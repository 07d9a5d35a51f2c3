// Package calendar holds the date computations shared by the server and the client:
// Monday-start weeks, the habit x day completion grid and calendar reminder links.
package calendar

import (
	"time"

	"habit-tracker/internal/models"
)

// DaysPerWeek is the number of cells in a grid row
const DaysPerWeek = 7

// StartOfDay truncates t to midnight in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
// b is compared in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekStart returns midnight of the Monday on or before ref
func WeekStart(ref time.Time) time.Time {
	offset := (int(ref.Weekday()) + 6) % 7
	return StartOfDay(ref).AddDate(0, 0, -offset)
}

// Week enumerates the seven days of the Monday-start week containing ref
func Week(ref time.Time) [DaysPerWeek]time.Time {
	var days [DaysPerWeek]time.Time
	start := WeekStart(ref)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// CompletedOn reports whether the habit has a completion on day's calendar date.
// Completion dates are stored as UTC days, so the comparison is done on the
// day's own Y-M-D rather than on an instant.
func CompletedOn(h *models.Habit, day time.Time) bool {
	y, m, d := day.Date()
	key := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for _, c := range h.Completions {
		if SameDay(key, c.Date) {
			return true
		}
	}
	return false
}

// GridRow is one habit across the week
type GridRow struct {
	HabitID string
	Name    string
	Color   string
	Cells   [DaysPerWeek]bool
}

// Grid is the weekly habit completion table
type Grid struct {
	Days [DaysPerWeek]time.Time
	Rows []GridRow
}

// BuildGrid computes the habit x day membership table for the week of ref
func BuildGrid(habits []models.Habit, ref time.Time) Grid {
	g := Grid{Days: Week(ref), Rows: make([]GridRow, 0, len(habits))}
	for i := range habits {
		h := &habits[i]
		row := GridRow{HabitID: h.ID, Name: h.Name, Color: h.Color}
		for j, day := range g.Days {
			row.Cells[j] = CompletedOn(h, day)
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

// DayTotals counts completed cells per weekday column
func (g Grid) DayTotals() [DaysPerWeek]int {
	var totals [DaysPerWeek]int
	for _, row := range g.Rows {
		for i, done := range row.Cells {
			if done {
				totals[i]++
			}
		}
	}
	return totals
}

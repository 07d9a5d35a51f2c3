package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"habit-tracker/internal/calendar"
	"habit-tracker/internal/models"
	"habit-tracker/internal/store"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	todayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	cellWidth = 5
)

// printer shows store notifications on w
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) Notify(n store.Notification) {
	style := successStyle
	mark := "✓"
	if n.Level == store.LevelError {
		style = errorStyle
		mark = "✗"
	}
	fmt.Fprintln(p.w, style.Render(mark+" "+n.Message))
}

// habitStyle colors text with the habit's own color
func habitStyle(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func renderHabits(w io.Writer, habits []models.Habit, now time.Time) {
	if len(habits) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("You haven't added any habits yet."))
		return
	}
	for i := range habits {
		h := &habits[i]
		done := " "
		if calendar.CompletedOn(h, now) {
			done = "✓"
		}
		line := fmt.Sprintf("[%s] %s  %s", done, habitStyle(h.Color).Render("●"), h.Name)
		fmt.Fprintf(w, "%s %s\n", line, mutedStyle.Render(fmt.Sprintf("(%d) %s", h.Streak(), h.ID)))
		if h.Description != "" {
			fmt.Fprintf(w, "      %s\n", mutedStyle.Render(h.Description))
		}
	}
}

// renderWeek draws the habit x weekday grid for the week of now
func renderWeek(w io.Writer, grid calendar.Grid, now time.Time) {
	nameWidth := len("Habit")
	for _, row := range grid.Rows {
		if n := lipgloss.Width(row.Name); n > nameWidth {
			nameWidth = n
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(pad("Habit", nameWidth)))
	for _, day := range grid.Days {
		label := center(day.Format("Mon"), cellWidth)
		if calendar.SameDay(day, now) {
			label = todayStyle.Render(label)
		}
		b.WriteString(label)
	}
	b.WriteString("\n")

	for _, row := range grid.Rows {
		b.WriteString(habitStyle(row.Color).Render(pad(row.Name, nameWidth)))
		for _, done := range row.Cells {
			cell := mutedStyle.Render(center("·", cellWidth))
			if done {
				cell = habitStyle(row.Color).Render(center("■", cellWidth))
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(pad("Total", nameWidth)))
	for _, total := range grid.DayTotals() {
		b.WriteString(mutedStyle.Render(center(fmt.Sprint(total), cellWidth)))
	}
	b.WriteString("\n")

	fmt.Fprint(w, b.String())
}

func renderStats(w io.Writer, stats store.DashboardStats) {
	rows := [][2]string{
		{"Total Habits", fmt.Sprint(stats.TotalHabits)},
		{"Completed Today", fmt.Sprint(stats.CompletedToday)},
		{"Total Streaks", fmt.Sprint(stats.TotalStreaks)},
		{"Today's Rate", fmt.Sprintf("%d%%", stats.TodaysRate)},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(pad(r[0], 16)), r[1])
	}
}

func renderAnalytics(w io.Writer, a *models.Analytics) {
	fmt.Fprintln(w, headerStyle.Render("Stats"))
	fmt.Fprintf(w, "  total completions  %d\n", a.Stats.TotalCompletions)
	fmt.Fprintf(w, "  average streak     %.1f\n", a.Stats.AverageStreak)
	fmt.Fprintf(w, "  best streak        %d\n", a.Stats.BestStreak)
	fmt.Fprintf(w, "  completions today  %d\n", a.Stats.CompletionsToday)

	fmt.Fprintln(w, headerStyle.Render("This week"))
	for _, p := range a.Charts.WeeklyProgress {
		fmt.Fprintf(w, "  %s %s %d\n", p.Day, bar(p.Completions), p.Completions)
	}

	fmt.Fprintln(w, headerStyle.Render("Streaks"))
	for _, p := range a.Charts.HabitStreaks {
		fmt.Fprintf(w, "  %s %d\n", pad(p.Name, 20), p.Streak)
	}

	fmt.Fprintln(w, headerStyle.Render("Summary"))
	fmt.Fprintf(w, "  today's completion rate  %d%%\n", a.Summary.TodaysCompletionRate)
	fmt.Fprintf(w, "  habits with 7+ days      %d\n", a.Summary.HabitsWith7DayStreak)
	fmt.Fprintf(w, "  habits with 30+ days     %d\n", a.Summary.HabitsWith30DayStreak)
}

func renderFriends(w io.Writer, friends []models.Friend, requests []models.FriendRequest) {
	fmt.Fprintln(w, headerStyle.Render("Friends"))
	if len(friends) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  no friends yet"))
	}
	for _, f := range friends {
		fmt.Fprintf(w, "  %s %s %s\n", f.User.DisplayName, mutedStyle.Render(f.User.Email),
			mutedStyle.Render("user "+f.User.ID+" friendship "+f.FriendshipID))
	}

	fmt.Fprintln(w, headerStyle.Render("Incoming requests"))
	if len(requests) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none"))
	}
	for _, r := range requests {
		fmt.Fprintf(w, "  %s %s %s\n", r.Requester.DisplayName, mutedStyle.Render(r.Requester.Email),
			mutedStyle.Render("request "+r.ID))
	}
}

func renderUser(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render(u.DisplayName), mutedStyle.Render(u.Email))
	if u.Bio != "" {
		fmt.Fprintln(w, u.Bio)
	}
	if u.AvatarURL != "" {
		fmt.Fprintln(w, mutedStyle.Render("avatar: "+u.AvatarURL))
	}
	fmt.Fprintln(w, mutedStyle.Render("id: "+u.ID))
}

func bar(n int) string {
	return strings.Repeat("█", n)
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap) + " "
	}
	return s + " "
}

func center(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"habit-tracker/internal/models"
)

const (
	reminderBaseURL  = "https://www.google.com/calendar/render?action=TEMPLATE"
	reminderDuration = 30 * time.Minute
	googleDateLayout = "20060102T150405Z"
)

var (
	ErrNoDays      = errors.New("select at least one day")
	ErrUnknownDay  = errors.New("unknown weekday code")
	ErrInvalidTime = errors.New("time must be HH:MM")
)

// DefaultReminderDays is the weekday selection offered before the user picks any
var DefaultReminderDays = []string{"MO", "TU", "WE", "TH", "FR"}

var dayCodes = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

// ReminderOptions selects when a reminder fires
type ReminderOptions struct {
	Time string   // HH:MM, local to now's location
	Days []string // RRULE weekday codes; the first one anchors the start date
}

// ParseClock parses an HH:MM time of day
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseDays splits a comma separated weekday list and upper-cases the codes
func ParseDays(s string) []string {
	var days []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			days = append(days, part)
		}
	}
	return days
}

// NextOccurrence returns the first moment strictly after now that falls on the
// given weekday at hour:minute in now's location.
func NextOccurrence(now time.Time, day time.Weekday, hour, minute int) time.Time {
	daysUntil := (int(day) - int(now.Weekday()) + 7) % 7
	y, m, d := now.Date()
	start := time.Date(y, m, d+daysUntil, hour, minute, 0, 0, now.Location())
	if !start.After(now) {
		start = start.AddDate(0, 0, 7)
	}
	return start
}

// ReminderLink builds a weekly recurring calendar event link for the habit
func ReminderLink(h *models.Habit, opts ReminderOptions, now time.Time) (*models.Reminder, error) {
	if len(opts.Days) == 0 {
		return nil, ErrNoDays
	}
	for _, code := range opts.Days {
		if _, ok := dayCodes[code]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDay, code)
		}
	}
	hour, minute, err := ParseClock(opts.Time)
	if err != nil {
		return nil, err
	}

	start := NextOccurrence(now, dayCodes[opts.Days[0]], hour, minute)
	end := start.Add(reminderDuration)

	details := h.Description
	if details == "" {
		details = "Time to complete your habit: " + h.Name
	}

	var b strings.Builder
	b.WriteString(reminderBaseURL)
	b.WriteString("&text=" + url.QueryEscape("Habit: "+h.Name))
	b.WriteString("&details=" + url.QueryEscape(details))
	b.WriteString("&location=")
	b.WriteString("&dates=" + formatGoogleDate(start) + "/" + formatGoogleDate(end))
	b.WriteString("&recur=RRULE:FREQ=WEEKLY;BYDAY=" + strings.Join(opts.Days, ","))

	return &models.Reminder{URL: b.String(), Start: start, End: end}, nil
}

func formatGoogleDate(t time.Time) string {
	return t.UTC().Format(googleDateLayout)
}

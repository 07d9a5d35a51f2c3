package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"habit-tracker/internal/calendar"
	"habit-tracker/internal/client"
	"habit-tracker/internal/models"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// resolveHabit finds a habit by ID or, failing that, by case-insensitive name
func resolveHabit(habits []models.Habit, ref string) (*models.Habit, error) {
	for i := range habits {
		if habits[i].ID == ref {
			return &habits[i], nil
		}
	}
	var match *models.Habit
	for i := range habits {
		if strings.EqualFold(habits[i].Name, ref) {
			if match != nil {
				return nil, fmt.Errorf("more than one habit is named %q, use its id", ref)
			}
			match = &habits[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no habit matches %q", ref)
	}
	return match, nil
}

// load signs in from the stored token and fetches everything
func (a *app) load(cmd *cobra.Command) error {
	if _, err := a.requireUser(cmd.Context()); err != nil {
		return err
	}
	return reported(a.store.FetchAll(cmd.Context()))
}

func newHabitsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habits",
		Short: "List and manage habits",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List habits with today's status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			renderHabits(cmd.OutOrStdout(), a.store.Habits(), time.Now())
			return nil
		},
	}

	var in client.HabitInput
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			in.Name = args[0]
			_, err := a.store.AddHabit(cmd.Context(), in)
			return reported(err)
		},
	}
	add.Flags().StringVar(&in.Description, "description", "", "optional description")
	add.Flags().StringVar(&in.Color, "color", "", "hex color such as #22c55e")

	del := &cobra.Command{
		Use:     "delete HABIT",
		Aliases: []string{"rm"},
		Short:   "Delete a habit by id or name",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			habit, err := resolveHabit(a.store.Habits(), args[0])
			if err != nil {
				return err
			}
			return reported(a.store.DeleteHabit(cmd.Context(), habit.ID))
		},
	}

	var date string
	toggle := &cobra.Command{
		Use:   "toggle HABIT",
		Short: "Mark or unmark a habit as done on a day (default today)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().Format(dateLayout)
			} else if _, err := time.Parse(dateLayout, date); err != nil {
				return errors.New("--date must be YYYY-MM-DD")
			}
			if err := a.load(cmd); err != nil {
				return err
			}
			habit, err := resolveHabit(a.store.Habits(), args[0])
			if err != nil {
				return err
			}
			updated, err := a.store.ToggleCompletion(cmd.Context(), habit.ID, date)
			if err != nil {
				return reported(err)
			}

			day, _ := time.Parse(dateLayout, date)
			state := "not done"
			if calendar.CompletedOn(updated, day) {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s marked %s on %s\n", updated.Name, state, date)
			return nil
		},
	}
	toggle.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD")

	cmd.AddCommand(list, add, del, toggle)
	return cmd
}

func newWeekCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the weekly completion grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			ref := now
			if date != "" {
				parsed, err := time.ParseInLocation(dateLayout, date, time.Local)
				if err != nil {
					return errors.New("--date must be YYYY-MM-DD")
				}
				ref = parsed
			}
			if err := a.load(cmd); err != nil {
				return err
			}
			renderWeek(cmd.OutOrStdout(), a.store.Week(ref), now)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the week to show (YYYY-MM-DD)")

	return cmd
}

func newRemindCmd(a *app) *cobra.Command {
	var clock, days, tz string

	cmd := &cobra.Command{
		Use:   "remind HABIT",
		Short: "Print a recurring calendar reminder link for a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dayList := calendar.ParseDays(days)
			if len(dayList) == 0 {
				return errors.New("please select at least one day")
			}
			if _, _, err := calendar.ParseClock(clock); err != nil {
				return err
			}
			if tz == "" {
				tz = localZoneName()
			}
			if err := a.load(cmd); err != nil {
				return err
			}
			habit, err := resolveHabit(a.store.Habits(), args[0])
			if err != nil {
				return err
			}
			reminder, err := a.api.Reminder(cmd.Context(), habit.ID, clock, dayList, tz)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "First reminder %s\n%s\n",
				reminder.Start.Local().Format("Mon 2 Jan 15:04"), reminder.URL)
			return nil
		},
	}
	cmd.Flags().StringVar(&clock, "time", "09:00", "time of day as HH:MM")
	cmd.Flags().StringVar(&days, "days", strings.Join(calendar.DefaultReminderDays, ","), "comma-separated days (MO,TU,WE,TH,FR,SA,SU)")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone (default local)")

	return cmd
}

// localZoneName returns the IANA name of the local zone when Go knows it
func localZoneName() string {
	if name := time.Local.String(); name != "Local" {
		return name
	}
	return ""
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), a.store.Stats())
			return nil
		},
	}
}

func newAnalyticsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show completion analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			analytics := a.store.State().Analytics
			if analytics == nil {
				return errors.New("no analytics available")
			}
			renderAnalytics(cmd.OutOrStdout(), analytics)
			return nil
		},
	}
}

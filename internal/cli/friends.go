package cli

import (
	"fmt"
	"strings"
	"time"

	"habit-tracker/internal/calendar"

	"github.com/spf13/cobra"
)

func newFriendsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "Manage friends and friend requests",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List friends and incoming requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			st := a.store.State()
			renderFriends(cmd.OutOrStdout(), st.Friends, st.IncomingRequests)
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find users by name or email",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			results, err := a.store.SearchUsers(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return reported(err)
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("no users found"))
			}
			for _, u := range results {
				fmt.Fprintf(out, "%s %s %s\n", u.DisplayName, mutedStyle.Render(u.Email), mutedStyle.Render(u.ID))
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add USER_ID",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			return reported(a.store.SendRequest(cmd.Context(), args[0]))
		},
	}

	accept := &cobra.Command{
		Use:   "accept REQUEST_ID",
		Short: "Accept an incoming friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			return reported(a.store.AcceptRequest(cmd.Context(), args[0]))
		},
	}

	decline := &cobra.Command{
		Use:   "decline REQUEST_ID",
		Short: "Decline an incoming friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			return reported(a.store.DeclineRequest(cmd.Context(), args[0]))
		},
	}

	remove := &cobra.Command{
		Use:   "remove FRIENDSHIP_ID",
		Short: "Remove a friend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			return reported(a.store.RemoveFriendship(cmd.Context(), args[0]))
		},
	}

	show := &cobra.Command{
		Use:   "show USER_ID",
		Short: "Show a friend's habits for this week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			profile, err := a.store.FriendProfile(cmd.Context(), args[0])
			if err != nil {
				return reported(err)
			}
			now := time.Now()
			out := cmd.OutOrStdout()
			renderUser(out, &profile.User)
			fmt.Fprintln(out)
			renderHabits(out, profile.Habits, now)
			fmt.Fprintln(out)
			renderWeek(out, calendar.BuildGrid(profile.Habits, now), now)
			return nil
		},
	}

	cmd.AddCommand(list, search, add, accept, decline, remove, show)
	return cmd
}

// Package cli implements habitctl, a terminal client for the habit tracker API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"habit-tracker/internal/client"
	"habit-tracker/internal/keyring"
	"habit-tracker/internal/models"
	"habit-tracker/internal/session"
	"habit-tracker/internal/store"

	"github.com/spf13/cobra"
)

// ErrReported marks an error the user has already been shown as a notification
var ErrReported = errors.New("reported")

var errNotLoggedIn = errors.New("not logged in, run `habitctl login` first")

// Option configures the root command
type Option func(*app)

// WithTokenStore replaces the OS keyring token store
func WithTokenStore(tokens client.TokenStore) Option {
	return func(a *app) {
		a.tokens = tokens
	}
}

// app is the state shared by every command of one invocation
type app struct {
	apiURL string
	tokens client.TokenStore

	api     *client.Client
	session *session.Session
	store   *store.Store
}

func (a *app) init(cmd *cobra.Command) {
	if a.tokens == nil {
		if keyring.IsAvailable() {
			a.tokens = keyring.New(a.apiURL)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("! OS keyring unavailable, you stay signed in for this command only"))
			a.tokens = &client.MemoryTokens{}
		}
	}
	a.api = client.New(a.apiURL, a.tokens, client.WithTimeZone(localZoneName()))
	a.session = session.New(a.api)
	a.store = store.New(a.api, newPrinter(cmd.ErrOrStderr()))
}

// requireUser restores the stored session and fails when nobody is signed in
func (a *app) requireUser(ctx context.Context) (*models.User, error) {
	user, err := a.session.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNotLoggedIn
	}
	return user, nil
}

// reported wraps err from a store call, which already notified the user
func reported(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrReported, err)
}

// NewRootCommand builds the habitctl command tree
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "habitctl",
		Short: "habitctl - habit tracker from the terminal",
		Long: `habitctl talks to a habit tracker server.

It can:
- track habits and toggle daily completions
- render the current week as a grid
- show dashboard stats and analytics
- manage friends and view their progress`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.init(cmd)
		},
	}

	defaultURL := os.Getenv("HABITCTL_API")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api", defaultURL, "API base URL (env HABITCTL_API)")

	rootCmd.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newHabitsCmd(a),
		newWeekCmd(a),
		newRemindCmd(a),
		newStatsCmd(a),
		newAnalyticsCmd(a),
		newFriendsCmd(a),
		newProfileCmd(a),
	)

	return rootCmd
}

// Execute runs habitctl and returns the process exit code
func Execute(args []string, stdout, stderr io.Writer, opts ...Option) int {
	cmd := NewRootCommand(opts...)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, ErrReported) {
			io.WriteString(stderr, errorStyle.Render("Error: "+err.Error())+"\n")
		}
		return 1
	}
	return 0
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"habit-tracker/internal/client"
	"habit-tracker/internal/handlers"
	"habit-tracker/internal/repository/memory"
	"habit-tracker/internal/services"
)

func newTestServer(t *testing.T) string {
	t.Helper()

	db := memory.New()
	users := memory.NewUserRepository(db)
	habits := memory.NewHabitRepository(db)
	friendships := memory.NewFriendshipRepository(db)

	hub := services.NewWSHub()
	userService := services.NewUserService(users, "test-secret", 30)
	friendService := services.NewFriendService(friendships, users, hub, services.NoopPusher{})

	router := handlers.NewRouter(handlers.Services{
		Users:     userService,
		Habits:    services.NewHabitService(habits, friendships, services.NoopCache{}, hub),
		Analytics: services.NewAnalyticsService(habits, services.NoopCache{}, time.Minute),
		Friends:   friendService,
		Profiles:  services.NewProfileService(users, habits, friendService, nil),
		Hub:       hub,
	}, handlers.Options{})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

type result struct {
	stdout string
	stderr string
	code   int
}

func run(apiURL string, tokens client.TokenStore, args ...string) result {
	var stdout, stderr bytes.Buffer
	code := Execute(append([]string{"--api", apiURL}, args...), &stdout, &stderr, WithTokenStore(tokens))
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func register(t *testing.T, apiURL string, tokens client.TokenStore, email, name string) {
	t.Helper()
	res := run(apiURL, tokens, "register", "--email", email, "--password", "secret1", "--name", name)
	require.Equal(t, 0, res.code, res.stderr)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "habitctl", cmd.Use)

	for _, name := range []string{"register", "login", "logout", "whoami", "habits", "week", "remind", "stats", "analytics", "friends", "profile"} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}

func TestWhoamiRequiresLogin(t *testing.T) {
	apiURL := newTestServer(t)

	res := run(apiURL, &client.MemoryTokens{}, "whoami")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "not logged in")
}

func TestRegisterLoginLogout(t *testing.T) {
	apiURL := newTestServer(t)
	tokens := &client.MemoryTokens{}

	register(t, apiURL, tokens, "ada@example.com", "Ada")

	res := run(apiURL, tokens, "whoami")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Ada")
	assert.Contains(t, res.stdout, "ada@example.com")

	require.Equal(t, 0, run(apiURL, tokens, "logout").code)
	assert.Equal(t, 1, run(apiURL, tokens, "whoami").code)

	res = run(apiURL, tokens, "login", "--email", "ada@example.com", "--password", "wrong1")
	assert.Equal(t, 1, res.code)

	res = run(apiURL, tokens, "login", "--email", "ada@example.com", "--password", "secret1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Signed in as Ada")
}

func TestHabitLifecycle(t *testing.T) {
	apiURL := newTestServer(t)
	tokens := &client.MemoryTokens{}
	register(t, apiURL, tokens, "ada@example.com", "Ada")

	res := run(apiURL, tokens, "habits", "add", "Read", "--color", "#22c55e")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Habit added!")

	res = run(apiURL, tokens, "habits", "toggle", "read")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Read marked done")

	res = run(apiURL, tokens, "stats")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Today's Rate")
	assert.Contains(t, res.stdout, "100%")

	res = run(apiURL, tokens, "week")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Read")
	assert.Contains(t, res.stdout, "Mon")
	assert.Contains(t, res.stdout, "■")

	res = run(apiURL, tokens, "habits", "toggle", "Read")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Read marked not done")

	res = run(apiURL, tokens, "remind", "Read", "--time", "07:30", "--days", "MO,WE", "--tz", "UTC")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "https://www.google.com/calendar/render")

	res = run(apiURL, tokens, "habits", "delete", "Read")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Habit deleted!")

	res = run(apiURL, tokens, "habits", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "You haven't added any habits yet.")
}

func TestUnknownHabit(t *testing.T) {
	apiURL := newTestServer(t)
	tokens := &client.MemoryTokens{}
	register(t, apiURL, tokens, "ada@example.com", "Ada")

	res := run(apiURL, tokens, "habits", "delete", "Nope")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `no habit matches "Nope"`)
}

func TestFriendRequestFlow(t *testing.T) {
	apiURL := newTestServer(t)
	ada := &client.MemoryTokens{}
	bob := &client.MemoryTokens{}
	register(t, apiURL, ada, "ada@example.com", "Ada")
	register(t, apiURL, bob, "bob@example.com", "Bob")

	adaUser, err := client.New(apiURL, ada).Me(context.Background())
	require.NoError(t, err)

	res := run(apiURL, bob, "friends", "search", "ada@")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, adaUser.ID)

	res = run(apiURL, bob, "friends", "add", adaUser.ID)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Friend request sent!")

	res = run(apiURL, bob, "friends", "add", adaUser.ID)
	assert.Equal(t, 1, res.code)
	assert.NotContains(t, res.stderr, "Error:")

	overview, err := client.New(apiURL, ada).Friends(context.Background())
	require.NoError(t, err)
	require.Len(t, overview.IncomingRequests, 1)

	res = run(apiURL, ada, "friends", "accept", overview.IncomingRequests[0].ID)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Friend request accepted!")

	res = run(apiURL, bob, "friends", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Ada")

	res = run(apiURL, bob, "friends", "show", adaUser.ID)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "ada@example.com")
}

func TestProfileUpdate(t *testing.T) {
	apiURL := newTestServer(t)
	tokens := &client.MemoryTokens{}
	register(t, apiURL, tokens, "ada@example.com", "Ada")

	res := run(apiURL, tokens, "profile", "update", "--bio", "counts things")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "counts things")
	assert.Contains(t, res.stdout, "Ada")
}

func TestFallsBackToMemoryTokensWithoutKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(gokeyring.MockInit)
	apiURL := newTestServer(t)

	var stdout, stderr bytes.Buffer
	code := Execute([]string{"--api", apiURL, "whoami"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "OS keyring unavailable")
	assert.Contains(t, stderr.String(), "not logged in")
}

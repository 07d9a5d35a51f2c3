package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/client"
	"habit-tracker/internal/models"
)

// fakeAPI serves a fixed set of habits and can fail chosen paths
type fakeAPI struct {
	mu       sync.Mutex
	habits   []models.Habit
	failing  map[string]int
	requests []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	f.requests = append(f.requests, r.Method+" "+path)

	if status, ok := f.failing[r.Method+" "+path]; ok {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
		return
	}

	switch {
	case r.Method == http.MethodGet && path == "/habits":
		json.NewEncoder(w).Encode(f.habits)
	case r.Method == http.MethodGet && path == "/friends":
		json.NewEncoder(w).Encode(models.FriendsOverview{
			Friends:          []models.Friend{{FriendshipID: "f-1"}},
			IncomingRequests: []models.FriendRequest{{ID: "r-1"}},
		})
	case r.Method == http.MethodGet && path == "/analytics":
		json.NewEncoder(w).Encode(models.Analytics{Stats: models.AnalyticsStats{TotalCompletions: len(f.habits)}})
	case r.Method == http.MethodPost && path == "/habits":
		var in client.HabitInput
		json.NewDecoder(r.Body).Decode(&in)
		h := models.Habit{ID: "h-new", Name: in.Name}
		f.habits = append(f.habits, h)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(h)
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/habits/"):
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/toggle-completion"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/habits/"), "/toggle-completion")
		json.NewEncoder(w).Encode(models.Habit{ID: id, Name: "toggled", Completions: []models.Completion{{ID: "c-1"}}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAPI) fail(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[route] = status
}

func newTestStore(t *testing.T) (*Store, *fakeAPI, *Recorder) {
	t.Helper()
	api := &fakeAPI{
		habits: []models.Habit{
			{ID: "h-1", Name: "Read"},
			{ID: "h-2", Name: "Run"},
			{ID: "h-3", Name: "Write"},
		},
		failing: make(map[string]int),
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	rec := &Recorder{}
	return New(client.New(srv.URL+"/api", &client.MemoryTokens{}), rec), api, rec
}

func TestFetchAllLoadsEverything(t *testing.T) {
	s, _, rec := newTestStore(t)

	require.NoError(t, s.FetchAll(context.Background()))

	st := s.State()
	assert.True(t, st.Loaded)
	assert.Len(t, st.Habits, 3)
	assert.Len(t, st.Friends, 1)
	assert.Len(t, st.IncomingRequests, 1)
	require.NotNil(t, st.Analytics)
	assert.Empty(t, rec.Notifications)
}

func TestFailedFetchKeepsStateAndNotifiesOnce(t *testing.T) {
	s, api, rec := newTestStore(t)
	require.NoError(t, s.FetchAll(context.Background()))
	before := s.State()

	api.fail("GET /friends", http.StatusInternalServerError)
	api.mu.Lock()
	api.habits = nil
	api.mu.Unlock()

	err := s.FetchAll(context.Background())
	require.Error(t, err)

	assert.Equal(t, before, s.State())
	require.Len(t, rec.Notifications, 1)
	assert.Equal(t, LevelError, rec.Notifications[0].Level)
	assert.Equal(t, msgLoadFailed, rec.Notifications[0].Message)
}

func TestDeleteHabitRemovesExactlyOneEntry(t *testing.T) {
	s, _, rec := newTestStore(t)
	require.NoError(t, s.FetchAll(context.Background()))

	require.NoError(t, s.DeleteHabit(context.Background(), "h-2"))

	habits := s.Habits()
	require.Len(t, habits, 2)
	assert.Equal(t, "h-1", habits[0].ID)
	assert.Equal(t, "h-3", habits[1].ID)
	assert.Equal(t, []Notification{{Level: LevelSuccess, Message: msgHabitDeleted}}, rec.Notifications)
}

func TestDeleteHabitFailureKeepsList(t *testing.T) {
	s, api, rec := newTestStore(t)
	require.NoError(t, s.FetchAll(context.Background()))
	api.fail("DELETE /habits/h-2", http.StatusNotFound)

	require.Error(t, s.DeleteHabit(context.Background(), "h-2"))

	assert.Len(t, s.Habits(), 3)
	assert.Equal(t, []Notification{{Level: LevelError, Message: msgDeleteFailed}}, rec.Notifications)
}

func TestAddHabitAppendsAndRefreshesAnalytics(t *testing.T) {
	s, api, rec := newTestStore(t)
	require.NoError(t, s.FetchAll(context.Background()))

	habit, err := s.AddHabit(context.Background(), client.HabitInput{Name: "Stretch"})
	require.NoError(t, err)
	assert.Equal(t, "h-new", habit.ID)

	st := s.State()
	require.Len(t, st.Habits, 4)
	assert.Equal(t, "Stretch", st.Habits[3].Name)
	assert.Equal(t, 4, st.Analytics.Stats.TotalCompletions)
	assert.Equal(t, msgHabitAdded, rec.Notifications[0].Message)

	api.mu.Lock()
	last := api.requests[len(api.requests)-1]
	api.mu.Unlock()
	assert.Equal(t, "GET /analytics", last)
}

func TestToggleCompletionReplacesHabit(t *testing.T) {
	s, _, rec := newTestStore(t)
	require.NoError(t, s.FetchAll(context.Background()))

	_, err := s.ToggleCompletion(context.Background(), "h-2", "2024-03-04")
	require.NoError(t, err)

	habits := s.Habits()
	require.Len(t, habits, 3)
	assert.Equal(t, "toggled", habits[1].Name)
	assert.Equal(t, 1, habits[1].Streak())
	assert.Equal(t, "Read", habits[0].Name)
	assert.Empty(t, rec.Notifications)
}

func TestSendRequestSurfacesServerMessage(t *testing.T) {
	s, api, rec := newTestStore(t)
	api.fail("POST /friends/request", http.StatusConflict)

	require.Error(t, s.SendRequest(context.Background(), "u-2"))
	assert.Equal(t, []Notification{{Level: LevelError, Message: "nope"}}, rec.Notifications)
}

func TestSearchUsersEmptyQueryClears(t *testing.T) {
	s, api, _ := newTestStore(t)

	results, err := s.SearchUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, s.State().SearchResults)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Empty(t, api.requests)
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, 3, 6, 22, 0, 0, 0, time.Local)
	today := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	habits := []models.Habit{
		{ID: "a", Completions: []models.Completion{{Date: today}, {Date: yesterday}}},
		{ID: "b", Completions: []models.Completion{{Date: yesterday}}},
		{ID: "c"},
	}

	stats := ComputeStats(habits, now)
	assert.Equal(t, DashboardStats{TotalHabits: 3, CompletedToday: 1, TotalStreaks: 3, TodaysRate: 33}, stats)
	assert.Equal(t, DashboardStats{}, ComputeStats(nil, now))
}

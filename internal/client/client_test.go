package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *MemoryTokens) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &MemoryTokens{}
	return New(srv.URL+"/api", tokens), tokens
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		json.NewEncoder(w).Encode(models.User{ID: "u-1", DisplayName: "Ada"})
	})

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	require.NoError(t, tokens.SetToken("abc"))
	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "Ada", user.DisplayName)
}

func TestClientSurfacesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"friend request already pending"}`))
	})

	_, err := c.SendFriendRequest(context.Background(), "u-2")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "friend request already pending", apiErr.Message)
	assert.True(t, IsStatus(err, http.StatusConflict))
}

func TestClientErrorWithoutBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := c.DeleteHabit(context.Background(), "h-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestToggleCompletionBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/habits/h-1/toggle-completion", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2024-03-04", body["date"])

		json.NewEncoder(w).Encode(models.Habit{ID: "h-1", Completions: []models.Completion{{ID: "c-1"}}})
	})

	habit, err := c.ToggleCompletion(context.Background(), "h-1", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, 1, habit.Streak())
}

func TestSearchUsersEscapesQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ada & bob", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode([]models.UserSummary{{ID: "u-2"}})
	})

	results, err := c.SearchUsers(context.Background(), "ada & bob")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestUpdateAvatarMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		data, _ := io.ReadAll(file)
		assert.Equal(t, "png-bytes", string(data))

		json.NewEncoder(w).Encode(models.User{ID: "u-1", AvatarURL: "https://cdn/x.png"})
	})

	user, err := c.UpdateAvatar(context.Background(), "/tmp/me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", user.AvatarURL)
}

func TestReminderQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "07:30", q.Get("time"))
		assert.Equal(t, "MO,WE", q.Get("days"))
		assert.Equal(t, "Europe/Berlin", q.Get("tz"))
		json.NewEncoder(w).Encode(models.Reminder{URL: "https://calendar"})
	})

	reminder, err := c.Reminder(context.Background(), "h-1", "07:30", []string{"MO", "WE"}, "Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, "https://calendar", reminder.URL)
}

func TestAnalyticsSendsTimeZone(t *testing.T) {
	var gotTZ []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTZ = append(gotTZ, r.URL.Query().Get("tz"))
		json.NewEncoder(w).Encode(models.Analytics{})
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, nil, WithTimeZone("America/New_York")).Analytics(context.Background())
	require.NoError(t, err)
	_, err = New(srv.URL, nil).Analytics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"America/New_York", ""}, gotTZ)
}

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habit-tracker/internal/client"
	"habit-tracker/internal/models"
)

func newTestSession(t *testing.T) (*Session, *client.MemoryTokens) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid token"})
			return
		}
		json.NewEncoder(w).Encode(models.User{ID: "u-1", DisplayName: "Ada"})
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in client.LoginInput
		json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid email or password"})
			return
		}
		json.NewEncoder(w).Encode(models.AuthResponse{
			User:  models.User{ID: "u-1", Email: in.Email, DisplayName: "Ada"},
			Token: "good",
		})
	})
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		var in client.ProfileInput
		json.NewDecoder(r.Body).Decode(&in)
		json.NewEncoder(w).Encode(models.User{ID: "u-1", DisplayName: in.DisplayName, Bio: in.Bio})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tokens := &client.MemoryTokens{}
	return New(client.New(srv.URL+"/api", tokens)), tokens
}

func TestRestoreWithoutToken(t *testing.T) {
	s, _ := newTestSession(t)

	user, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, s.Authenticated())
}

func TestRestoreWithValidToken(t *testing.T) {
	s, tokens := newTestSession(t)
	require.NoError(t, tokens.SetToken("good"))

	user, err := s.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ada", s.User().DisplayName)
}

func TestRestoreClearsRejectedToken(t *testing.T) {
	s, tokens := newTestSession(t)
	require.NoError(t, tokens.SetToken("stale"))

	user, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)

	token, _ := tokens.Token()
	assert.Empty(t, token)
}

func TestLoginPersistsTokenAndLogoutClears(t *testing.T) {
	s, tokens := newTestSession(t)

	user, err := s.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	token, _ := tokens.Token()
	assert.Equal(t, "good", token)

	require.NoError(t, s.Logout())
	token, _ = tokens.Token()
	assert.Empty(t, token)
	assert.Nil(t, s.User())
}

func TestLoginFailureKeepsAnonymous(t *testing.T) {
	s, tokens := newTestSession(t)

	_, err := s.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.False(t, s.Authenticated())

	token, _ := tokens.Token()
	assert.Empty(t, token)
}

func TestUpdateProfileRefreshesUser(t *testing.T) {
	s, tokens := newTestSession(t)
	require.NoError(t, tokens.SetToken("good"))
	_, err := s.Restore(context.Background())
	require.NoError(t, err)

	_, err = s.UpdateProfile(context.Background(), "Ada L.", "math")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", s.User().DisplayName)
	assert.Equal(t, "math", s.User().Bio)
}

// Package session tracks who is signed in on the client side.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"habit-tracker/internal/client"
	"habit-tracker/internal/models"

	"github.com/rs/zerolog/log"
)

// Session owns the signed-in user and the persisted token
type Session struct {
	api *client.Client

	mu   sync.RWMutex
	user *models.User
}

// New creates an anonymous session over api
func New(api *client.Client) *Session {
	return &Session{api: api}
}

// User returns the signed-in user, or nil when anonymous
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a user is signed in
func (s *Session) Authenticated() bool {
	return s.User() != nil
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// Restore resumes a stored session. Without a token the session stays
// anonymous; a token the server rejects is cleared.
func (s *Session) Restore(ctx context.Context) (*models.User, error) {
	token, err := s.api.Tokens().Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		s.setUser(nil)
		return nil, nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Stored token rejected, clearing session")
		if clearErr := s.api.Tokens().ClearToken(); clearErr != nil {
			return nil, fmt.Errorf("failed to clear token: %w", clearErr)
		}
		s.setUser(nil)
		return nil, nil
	}

	s.setUser(user)
	return user, nil
}

// Register creates an account and signs in as it
func (s *Session) Register(ctx context.Context, in client.RegisterInput) (*models.User, error) {
	resp, err := s.api.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.signIn(resp)
}

// Login signs in with email and password
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.api.Login(ctx, client.LoginInput{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return s.signIn(resp)
}

func (s *Session) signIn(resp *models.AuthResponse) (*models.User, error) {
	if err := s.api.Tokens().SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	user := resp.User
	s.setUser(&user)
	return &user, nil
}

// Logout forgets the token and the user
func (s *Session) Logout() error {
	s.setUser(nil)
	return s.api.Tokens().ClearToken()
}

// UpdateProfile changes display name and bio and refreshes the cached user
func (s *Session) UpdateProfile(ctx context.Context, displayName, bio string) (*models.User, error) {
	user, err := s.api.UpdateProfile(ctx, client.ProfileInput{DisplayName: displayName, Bio: bio})
	if err != nil {
		return nil, err
	}
	s.setUser(user)
	return user, nil
}

// UpdateAvatar uploads a new avatar and refreshes the cached user
func (s *Session) UpdateAvatar(ctx context.Context, filename string, image io.Reader) (*models.User, error) {
	user, err := s.api.UpdateAvatar(ctx, filename, image)
	if err != nil {
		return nil, err
	}
	s.setUser(user)
	return user, nil
}

// Package keyring persists the session token in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultService is the keyring service name tokens are stored under
const DefaultService = "habit-tracker"

// ErrKeyringUnavailable is returned when the OS keyring cannot be used
var ErrKeyringUnavailable = errors.New("OS keyring is not available")

// Store is a client.TokenStore backed by the OS keyring. One token is kept
// per account, which is typically the API base URL.
type Store struct {
	service string
	account string
}

// New creates a store for account under the default service name
func New(account string) *Store {
	return &Store{service: DefaultService, account: account}
}

// Token returns the stored token or "" when none is stored
func (s *Store) Token() (string, error) {
	token, err := keyring.Get(s.service, s.account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return token, nil
}

// SetToken stores token, replacing any previous one
func (s *Store) SetToken(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(s.service, s.account, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// ClearToken removes the token. Clearing an empty store is not an error.
func (s *Store) ClearToken() error {
	err := keyring.Delete(s.service, s.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// IsAvailable reports whether the OS keyring answers at all
func IsAvailable() bool {
	_, err := keyring.Get(DefaultService, "availability-check")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

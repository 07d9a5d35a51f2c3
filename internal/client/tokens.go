package client

import "sync"

// TokenStore holds the bearer token between requests. Token returns "" when
// no token is stored.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// MemoryTokens keeps the token in process memory
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokens) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokens) ClearToken() error {
	return m.SetToken("")
}

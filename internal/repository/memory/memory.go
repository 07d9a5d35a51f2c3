// Package memory is an in-process implementation of the repositories, used when
// the server runs with database.driver=memory and by tests.
package memory

import (
	"sync"

	"habit-tracker/internal/models"
)

// DB holds every table behind one lock
type DB struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	habits      map[string]*models.Habit
	friendships map[string]*models.Friendship
}

// New creates an empty database
func New() *DB {
	return &DB{
		users:       make(map[string]*models.User),
		habits:      make(map[string]*models.Habit),
		friendships: make(map[string]*models.Friendship),
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.PushToken != nil {
		token := *u.PushToken
		c.PushToken = &token
	}
	return &c
}

func copyHabit(h *models.Habit) *models.Habit {
	c := *h
	c.Completions = make([]models.Completion, len(h.Completions))
	copy(c.Completions, h.Completions)
	return &c
}

func copyFriendship(f *models.Friendship) *models.Friendship {
	c := *f
	return &c
}

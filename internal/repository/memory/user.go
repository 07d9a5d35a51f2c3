package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"habit-tracker/internal/models"
	"habit-tracker/internal/repository"
)

// UserRepository stores users in memory
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, repository.ErrDuplicate)
		}
	}
	r.db.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id, displayName, bio string, updatedAt time.Time) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	u.DisplayName = displayName
	u.Bio = bio
	u.UpdatedAt = updatedAt
	return copyUser(u), nil
}

func (r *UserRepository) UpdateAvatar(_ context.Context, id, avatarURL string, updatedAt time.Time) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	u.AvatarURL = avatarURL
	u.UpdatedAt = updatedAt
	return copyUser(u), nil
}

func (r *UserRepository) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	if pushToken == nil {
		u.PushToken = nil
	} else {
		token := *pushToken
		u.PushToken = &token
	}
	return nil
}

func (r *UserRepository) Search(_ context.Context, q, excludeID string, limit int) ([]*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	q = strings.ToLower(q)
	users := make([]*models.User, 0)
	for _, u := range r.db.users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.DisplayName), q) || strings.Contains(strings.ToLower(u.Email), q) {
			users = append(users, copyUser(u))
		}
	}

	sort.Slice(users, func(i, j int) bool { return users[i].DisplayName < users[j].DisplayName })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

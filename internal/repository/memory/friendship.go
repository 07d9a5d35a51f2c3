package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"habit-tracker/internal/models"
	"habit-tracker/internal/repository"
)

// FriendshipRepository stores friendships in memory
type FriendshipRepository struct {
	db *DB
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *DB) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

func (r *FriendshipRepository) findBetween(a, b string) *models.Friendship {
	for _, f := range r.db.friendships {
		if (f.RequesterID == a && f.RecipientID == b) || (f.RequesterID == b && f.RecipientID == a) {
			return f
		}
	}
	return nil
}

func (r *FriendshipRepository) Create(_ context.Context, f *models.Friendship) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.findBetween(f.RequesterID, f.RecipientID) != nil {
		return fmt.Errorf("friendship: %w", repository.ErrDuplicate)
	}
	r.db.friendships[f.ID] = copyFriendship(f)
	return nil
}

func (r *FriendshipRepository) GetByID(_ context.Context, id string) (*models.Friendship, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	f, ok := r.db.friendships[id]
	if !ok {
		return nil, fmt.Errorf("friendship: %w", repository.ErrNotFound)
	}
	return copyFriendship(f), nil
}

func (r *FriendshipRepository) FindBetween(_ context.Context, userA, userB string) (*models.Friendship, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	f := r.findBetween(userA, userB)
	if f == nil {
		return nil, fmt.Errorf("friendship: %w", repository.ErrNotFound)
	}
	return copyFriendship(f), nil
}

func (r *FriendshipRepository) Reopen(_ context.Context, id, requesterID, recipientID string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	f, ok := r.db.friendships[id]
	if !ok {
		return fmt.Errorf("friendship: %w", repository.ErrNotFound)
	}
	f.RequesterID = requesterID
	f.RecipientID = recipientID
	f.Status = models.FriendshipPending
	f.CreatedAt = at
	f.UpdatedAt = at
	return nil
}

func (r *FriendshipRepository) UpdateStatus(_ context.Context, id string, status models.FriendshipStatus, updatedAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	f, ok := r.db.friendships[id]
	if !ok {
		return fmt.Errorf("friendship: %w", repository.ErrNotFound)
	}
	f.Status = status
	f.UpdatedAt = updatedAt
	return nil
}

func (r *FriendshipRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.friendships[id]; !ok {
		return fmt.Errorf("friendship: %w", repository.ErrNotFound)
	}
	delete(r.db.friendships, id)
	return nil
}

func (r *FriendshipRepository) ListForUser(_ context.Context, userID string, status models.FriendshipStatus) ([]*models.Friendship, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	friendships := make([]*models.Friendship, 0)
	for _, f := range r.db.friendships {
		if f.Involves(userID) && f.Status == status {
			friendships = append(friendships, copyFriendship(f))
		}
	}
	sort.Slice(friendships, func(i, j int) bool {
		return friendships[i].CreatedAt.After(friendships[j].CreatedAt)
	})
	return friendships, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"habit-tracker/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const friendshipColumns = `id, requester_id, recipient_id, status, created_at, updated_at`

// FriendshipRepository handles database operations for friendships
type FriendshipRepository struct {
	db *pgxpool.Pool
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

func scanFriendship(row pgx.Row) (*models.Friendship, error) {
	var f models.Friendship
	err := row.Scan(&f.ID, &f.RequesterID, &f.RecipientID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create creates a new friendship
func (r *FriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	query := `
		INSERT INTO friendships (` + friendshipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, f.ID, f.RequesterID, f.RecipientID, f.Status, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("friendship: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// GetByID retrieves a friendship by ID
func (r *FriendshipRepository) GetByID(ctx context.Context, id string) (*models.Friendship, error) {
	query := `SELECT ` + friendshipColumns + ` FROM friendships WHERE id = $1`
	f, err := scanFriendship(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("friendship: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return f, nil
}

// FindBetween retrieves the friendship between two users in either direction
func (r *FriendshipRepository) FindBetween(ctx context.Context, userA, userB string) (*models.Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE (requester_id = $1 AND recipient_id = $2)
		   OR (requester_id = $2 AND recipient_id = $1)
		LIMIT 1
	`
	f, err := scanFriendship(r.db.QueryRow(ctx, query, userA, userB))
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("friendship: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find friendship: %w", err)
	}
	return f, nil
}

// Reopen turns an existing (declined) friendship into a fresh pending request
func (r *FriendshipRepository) Reopen(ctx context.Context, id, requesterID, recipientID string, at time.Time) error {
	query := `
		UPDATE friendships
		SET requester_id = $1, recipient_id = $2, status = $3, created_at = $4, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.Exec(ctx, query, requesterID, recipientID, models.FriendshipPending, at, id)
	if isInvalidText(err) {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to reopen friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	return nil
}

// UpdateStatus sets the status of a friendship
func (r *FriendshipRepository) UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus, updatedAt time.Time) error {
	query := `UPDATE friendships SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(ctx, query, status, updatedAt, id)
	if isInvalidText(err) {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	return nil
}

// Delete deletes a friendship by ID
func (r *FriendshipRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM friendships WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if isInvalidText(err) {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("friendship: %w", ErrNotFound)
	}
	return nil
}

// ListForUser retrieves friendships with the given status that involve the user
func (r *FriendshipRepository) ListForUser(ctx context.Context, userID string, status models.FriendshipStatus) ([]*models.Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE (requester_id = $1 OR recipient_id = $1) AND status = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	defer rows.Close()

	friendships := make([]*models.Friendship, 0)
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		friendships = append(friendships, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendships: %w", err)
	}
	return friendships, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"habit-tracker/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, password_hash, display_name, bio, avatar_url, push_token, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.Bio,
		&user.AvatarURL, &user.PushToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.DisplayName, user.Bio,
		user.AvatarURL, user.PushToken, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile sets the display name and bio
func (r *UserRepository) UpdateProfile(ctx context.Context, id, displayName, bio string, updatedAt time.Time) (*models.User, error) {
	query := `
		UPDATE users SET display_name = $1, bio = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, displayName, bio, updatedAt, id))
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// UpdateAvatar sets the avatar URL
func (r *UserRepository) UpdateAvatar(ctx context.Context, id, avatarURL string, updatedAt time.Time) (*models.User, error) {
	query := `
		UPDATE users SET avatar_url = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRow(ctx, query, avatarURL, updatedAt, id))
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	return user, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, userID)
	if isInvalidText(err) {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	return nil
}

// Search finds users whose display name or email contains the query
func (r *UserRepository) Search(ctx context.Context, q, excludeID string, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id <> $1 AND (display_name ILIKE $2 OR email ILIKE $2)
		ORDER BY display_name
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, excludeID, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

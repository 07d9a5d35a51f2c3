package repository

import (
	"context"
	"fmt"
	"time"

	"habit-tracker/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HabitRepository handles database operations for habits and their completions
type HabitRepository struct {
	db *pgxpool.Pool
}

// NewHabitRepository creates a new habit repository
func NewHabitRepository(db *pgxpool.Pool) *HabitRepository {
	return &HabitRepository{db: db}
}

// Create creates a new habit
func (r *HabitRepository) Create(ctx context.Context, habit *models.Habit) error {
	query := `
		INSERT INTO habits (id, user_id, name, description, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		habit.ID, habit.UserID, habit.Name, habit.Description, habit.Color,
		habit.CreatedAt, habit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

// GetByID retrieves a habit with its completions
func (r *HabitRepository) GetByID(ctx context.Context, id string) (*models.Habit, error) {
	query := `
		SELECT id, user_id, name, description, color, created_at, updated_at
		FROM habits
		WHERE id = $1
	`
	var habit models.Habit
	err := r.db.QueryRow(ctx, query, id).Scan(
		&habit.ID, &habit.UserID, &habit.Name, &habit.Description, &habit.Color,
		&habit.CreatedAt, &habit.UpdatedAt,
	)
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("habit: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	if err := r.attachCompletions(ctx, []*models.Habit{&habit}); err != nil {
		return nil, err
	}
	return &habit, nil
}

// ListByUser retrieves all habits of a user, oldest first, with completions
func (r *HabitRepository) ListByUser(ctx context.Context, userID string) ([]*models.Habit, error) {
	query := `
		SELECT id, user_id, name, description, color, created_at, updated_at
		FROM habits
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits := make([]*models.Habit, 0)
	for rows.Next() {
		var habit models.Habit
		err := rows.Scan(
			&habit.ID, &habit.UserID, &habit.Name, &habit.Description, &habit.Color,
			&habit.CreatedAt, &habit.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, &habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habits: %w", err)
	}

	if err := r.attachCompletions(ctx, habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// attachCompletions loads completions for the given habits in one query
func (r *HabitRepository) attachCompletions(ctx context.Context, habits []*models.Habit) error {
	if len(habits) == 0 {
		return nil
	}

	ids := make([]string, len(habits))
	byID := make(map[string]*models.Habit, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
		byID[h.ID] = h
		h.Completions = make([]models.Completion, 0)
	}

	query := `
		SELECT id, habit_id, day
		FROM completions
		WHERE habit_id = ANY($1)
		ORDER BY day
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to get completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Completion
		if err := rows.Scan(&c.ID, &c.HabitID, &c.Date); err != nil {
			return fmt.Errorf("failed to scan completion: %w", err)
		}
		c.Date = c.Date.UTC()
		if h, ok := byID[c.HabitID]; ok {
			h.Completions = append(h.Completions, c)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating completions: %w", err)
	}
	return nil
}

// Update updates name, description and color
func (r *HabitRepository) Update(ctx context.Context, habit *models.Habit) error {
	query := `
		UPDATE habits SET name = $1, description = $2, color = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.Exec(ctx, query, habit.Name, habit.Description, habit.Color, habit.UpdatedAt, habit.ID)
	if isInvalidText(err) {
		return fmt.Errorf("habit: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("habit: %w", ErrNotFound)
	}
	return nil
}

// Delete deletes a habit by ID; completions cascade
func (r *HabitRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM habits WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if isInvalidText(err) {
		return fmt.Errorf("habit: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("habit: %w", ErrNotFound)
	}
	return nil
}

// ToggleCompletion removes the completion on day if present, otherwise inserts one
// with completionID. It reports whether a completion was added.
func (r *HabitRepository) ToggleCompletion(ctx context.Context, habitID string, day time.Time, completionID string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `DELETE FROM completions WHERE habit_id = $1 AND day = $2`, habitID, day)
	if err != nil {
		return false, fmt.Errorf("failed to remove completion: %w", err)
	}

	added := result.RowsAffected() == 0
	if added {
		_, err = tx.Exec(ctx,
			`INSERT INTO completions (id, habit_id, day) VALUES ($1, $2, $3) ON CONFLICT (habit_id, day) DO NOTHING`,
			completionID, habitID, day,
		)
		if err != nil {
			return false, fmt.Errorf("failed to add completion: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE habits SET updated_at = $1 WHERE id = $2`, time.Now(), habitID); err != nil {
		return false, fmt.Errorf("failed to touch habit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit toggle: %w", err)
	}
	return added, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"habit-tracker/internal/models"
	"habit-tracker/internal/repository"
)

// HabitRepository stores habits and completions in memory
type HabitRepository struct {
	db *DB
}

// NewHabitRepository creates a new habit repository
func NewHabitRepository(db *DB) *HabitRepository {
	return &HabitRepository{db: db}
}

func (r *HabitRepository) Create(_ context.Context, habit *models.Habit) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.habits[habit.ID]; ok {
		return fmt.Errorf("habit %s: %w", habit.ID, repository.ErrDuplicate)
	}
	stored := copyHabit(habit)
	if stored.Completions == nil {
		stored.Completions = make([]models.Completion, 0)
	}
	r.db.habits[habit.ID] = stored
	return nil
}

func (r *HabitRepository) GetByID(_ context.Context, id string) (*models.Habit, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	h, ok := r.db.habits[id]
	if !ok {
		return nil, fmt.Errorf("habit: %w", repository.ErrNotFound)
	}
	return copyHabit(h), nil
}

func (r *HabitRepository) ListByUser(_ context.Context, userID string) ([]*models.Habit, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	habits := make([]*models.Habit, 0)
	for _, h := range r.db.habits {
		if h.UserID == userID {
			habits = append(habits, copyHabit(h))
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID < habits[j].ID
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
	return habits, nil
}

func (r *HabitRepository) Update(_ context.Context, habit *models.Habit) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	h, ok := r.db.habits[habit.ID]
	if !ok {
		return fmt.Errorf("habit: %w", repository.ErrNotFound)
	}
	h.Name = habit.Name
	h.Description = habit.Description
	h.Color = habit.Color
	h.UpdatedAt = habit.UpdatedAt
	return nil
}

func (r *HabitRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.habits[id]; !ok {
		return fmt.Errorf("habit: %w", repository.ErrNotFound)
	}
	delete(r.db.habits, id)
	return nil
}

func (r *HabitRepository) ToggleCompletion(_ context.Context, habitID string, day time.Time, completionID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	h, ok := r.db.habits[habitID]
	if !ok {
		return false, fmt.Errorf("habit: %w", repository.ErrNotFound)
	}
	h.UpdatedAt = time.Now()

	for i, c := range h.Completions {
		if c.Date.Equal(day) {
			h.Completions = append(h.Completions[:i], h.Completions[i+1:]...)
			return false, nil
		}
	}

	h.Completions = append(h.Completions, models.Completion{ID: completionID, HabitID: habitID, Date: day})
	sort.Slice(h.Completions, func(i, j int) bool { return h.Completions[i].Date.Before(h.Completions[j].Date) })
	return true, nil
}

package handlers

import (
	"net/http"
	"time"

	"habit-tracker/internal/calendar"
	"habit-tracker/internal/middleware"
	"habit-tracker/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// HabitHandler handles habit-related HTTP requests
type HabitHandler struct {
	habitService *services.HabitService
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habitService *services.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

// ListHabits handles GET /api/habits
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	habits, err := h.habitService.ListHabits(ctx, userID)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID), err, "Failed to list habits")
		return
	}

	respondJSON(w, http.StatusOK, habits)
}

// CreateHabit handles POST /api/habits
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.HabitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	habit, err := h.habitService.CreateHabit(ctx, userID, req)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID), err, "Failed to create habit")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("habit_id", habit.ID).
		Msg("Habit created")

	respondJSON(w, http.StatusCreated, habit)
}

// UpdateHabit handles PUT /api/habits/{id}
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	habitID := chi.URLParam(r, "id")

	var req services.HabitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	habit, err := h.habitService.UpdateHabit(ctx, userID, habitID, req)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID).Str("habit_id", habitID), err, "Failed to update habit")
		return
	}

	respondJSON(w, http.StatusOK, habit)
}

// DeleteHabit handles DELETE /api/habits/{id}
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	habitID := chi.URLParam(r, "id")

	if err := h.habitService.DeleteHabit(ctx, userID, habitID); err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID).Str("habit_id", habitID), err, "Failed to delete habit")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("habit_id", habitID).
		Msg("Habit deleted")

	w.WriteHeader(http.StatusNoContent)
}

// ToggleCompletion handles POST /api/habits/{id}/toggle-completion
func (h *HabitHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	habitID := chi.URLParam(r, "id")

	var req services.ToggleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	habit, err := h.habitService.ToggleCompletion(ctx, userID, habitID, req.Date)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID).Str("habit_id", habitID), err, "Failed to update completion")
		return
	}

	log.Debug().
		Str("user_id", userID).
		Str("habit_id", habitID).
		Str("date", req.Date).
		Int("streak", habit.Streak()).
		Msg("Completion toggled")

	respondJSON(w, http.StatusOK, habit)
}

// Reminder handles GET /api/habits/{id}/reminder?time=HH:MM&days=MO,TU
func (h *HabitHandler) Reminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	habitID := chi.URLParam(r, "id")

	opts := calendar.ReminderOptions{
		Time: r.URL.Query().Get("time"),
		Days: calendar.ParseDays(r.URL.Query().Get("days")),
	}
	if opts.Time == "" {
		opts.Time = "09:00"
	}

	loc, ok := locationParam(w, r)
	if !ok {
		return
	}
	now := time.Now()
	if loc != nil {
		now = now.In(loc)
	}

	reminder, err := h.habitService.Reminder(ctx, userID, habitID, opts, now)
	if err != nil {
		respondServiceError(w, log.Warn().Str("user_id", userID).Str("habit_id", habitID), err, "Failed to build reminder")
		return
	}

	respondJSON(w, http.StatusOK, reminder)
}

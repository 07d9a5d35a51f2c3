package handlers

import (
	"net/http"

	"habit-tracker/internal/middleware"
	"habit-tracker/internal/services"

	"github.com/rs/zerolog/log"
)

// AnalyticsHandler serves the analytics snapshot
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetAnalytics handles GET /api/analytics?tz=
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	loc, ok := locationParam(w, r)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.GetAnalytics(ctx, userID, loc)
	if err != nil {
		respondServiceError(w, log.Error().Str("user_id", userID), err, "Failed to compute analytics")
		return
	}

	respondJSON(w, http.StatusOK, analytics)
}

package handlers

import (
	"net/http"

	"habit-tracker/internal/middleware"
	"habit-tracker/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Services bundles what the router needs to build its handlers
type Services struct {
	Users     *services.UserService
	Habits    *services.HabitService
	Analytics *services.AnalyticsService
	Friends   *services.FriendService
	Profiles  *services.ProfileService
	Hub       *services.WSHub
}

// Options tunes how the router treats its clients
type Options struct {
	// AuthLimiter throttles register and login per client IP; nil disables it
	AuthLimiter *middleware.RateLimiter
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For / X-Real-IP. Without
	// it the rate limiter keys on the socket peer.
	TrustProxy bool
}

// NewRouter wires every route of the API
func NewRouter(svc Services, opts Options) http.Handler {
	authHandler := NewAuthHandler(svc.Users)
	habitHandler := NewHabitHandler(svc.Habits)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics)
	friendHandler := NewFriendHandler(svc.Friends)
	profileHandler := NewProfileHandler(svc.Profiles, svc.Users)
	wsHandler := NewWebSocketHandler(svc.Hub, svc.Users)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	if opts.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.AuthLimiter != nil {
				r.Use(opts.AuthLimiter.Handler)
			}
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(svc.Users))

			r.Get("/auth/me", authHandler.Me)

			r.Get("/habits", habitHandler.ListHabits)
			r.Post("/habits", habitHandler.CreateHabit)
			r.Put("/habits/{id}", habitHandler.UpdateHabit)
			r.Delete("/habits/{id}", habitHandler.DeleteHabit)
			r.Post("/habits/{id}/toggle-completion", habitHandler.ToggleCompletion)
			r.Get("/habits/{id}/reminder", habitHandler.Reminder)

			r.Get("/analytics", analyticsHandler.GetAnalytics)

			r.Get("/friends", friendHandler.ListFriends)
			r.Get("/friends/search", friendHandler.Search)
			r.Post("/friends/request", friendHandler.SendRequest)
			r.Put("/friends/request/{id}", friendHandler.RespondRequest)
			r.Delete("/friends/{id}", friendHandler.RemoveFriend)

			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile", profileHandler.UpdateProfile)
			r.Put("/profile/avatar", profileHandler.UpdateAvatar)
			r.Put("/profile/push-token", profileHandler.UpdatePushToken)
			r.Get("/profile/{userId}", profileHandler.GetUserProfile)
		})
	})

	r.Get("/ws", wsHandler.HandleWebSocket)

	return r
}

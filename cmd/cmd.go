package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habit-tracker/internal/config"
	"habit-tracker/internal/handlers"
	"habit-tracker/internal/logging"
	"habit-tracker/internal/middleware"
	"habit-tracker/internal/repository"
	"habit-tracker/internal/repository/memory"
	"habit-tracker/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// stores groups the repositories of one database driver
type stores struct {
	users       services.UserStore
	habits      services.HabitStore
	friendships services.FriendshipStore
	close       func()
}

func Run() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	logFile, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer logFile.Close()

	ctx := context.Background()

	db, err := openStores(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open database")
	}
	defer db.close()

	cache := newAnalyticsCache(ctx, cfg.Redis)
	pusher := newPusher(cfg.APNs)
	avatars := newAvatarStorage(ctx, cfg.AWS)

	// Initialize services
	wsHub := services.NewWSHub()
	userService := services.NewUserService(db.users, cfg.JWT.Secret, cfg.JWT.ExpDays)
	habitService := services.NewHabitService(db.habits, db.friendships, cache, wsHub)
	analyticsService := services.NewAnalyticsService(db.habits, cache, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
	friendService := services.NewFriendService(db.friendships, db.users, wsHub, pusher)
	profileService := services.NewProfileService(db.users, db.habits, friendService, avatars)

	router := handlers.NewRouter(handlers.Services{
		Users:     userService,
		Habits:    habitService,
		Analytics: analyticsService,
		Friends:   friendService,
		Profiles:  profileService,
		Hub:       wsHub,
	}, handlers.Options{
		AuthLimiter: middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst),
		TrustProxy:  cfg.Server.TrustedProxy,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("driver", cfg.Database.Driver).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked websocket connections are not closed by Shutdown
	wsHub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if closer, ok := cache.(interface{ Close() error }); ok {
		closer.Close()
	}

	log.Info().Msg("Server exited")
}

// openStores connects the configured database driver
func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory database, data is lost on exit")
		mem := memory.New()
		return &stores{
			users:       memory.NewUserRepository(mem),
			habits:      memory.NewHabitRepository(mem),
			friendships: memory.NewFriendshipRepository(mem),
			close:       func() {},
		}, nil
	case "postgres":
		db, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("Database connection established")

		return &stores{
			users:       repository.NewUserRepository(db),
			habits:      repository.NewHabitRepository(db),
			friendships: repository.NewFriendshipRepository(db),
			close:       db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func newAnalyticsCache(ctx context.Context, cfg config.RedisConfig) services.AnalyticsCache {
	if cfg.Addr == "" {
		return services.NoopCache{}
	}
	cache, err := services.NewRedisCache(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis unavailable, analytics cache disabled")
		return services.NoopCache{}
	}
	log.Info().Str("addr", cfg.Addr).Msg("Analytics cache connected")
	return cache
}

func newPusher(cfg config.APNsConfig) services.Pusher {
	if cfg.CertFile == "" {
		return services.NoopPusher{}
	}
	pusher, err := services.NewAPNsPusher(cfg.CertFile, cfg.CertPassword, cfg.Topic, cfg.Production)
	if err != nil {
		log.Warn().Err(err).Msg("APNs certificate unusable, push disabled")
		return services.NoopPusher{}
	}
	return pusher
}

// newAvatarStorage returns nil when no bucket is configured; avatar uploads
// then answer 503.
func newAvatarStorage(ctx context.Context, cfg config.AWSConfig) services.AvatarStorage {
	if cfg.S3Bucket == "" {
		log.Warn().Msg("aws.s3_bucket not set, avatar uploads disabled")
		return nil
	}
	storage, err := services.NewS3Storage(ctx, services.S3Options{
		Region:    cfg.Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Endpoint:  cfg.Endpoint,
		PublicURL: cfg.PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create S3 client")
	}
	return storage
}

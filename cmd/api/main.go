package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/booking-project/docs" // Swagger docs (generated)
	"github.com/redmonkez12/booking-project/internal/auth"
	"github.com/redmonkez12/booking-project/internal/config"
	"github.com/redmonkez12/booking-project/internal/database"
	"github.com/redmonkez12/booking-project/internal/email"
	httpServer "github.com/redmonkez12/booking-project/internal/http"
	"github.com/redmonkez12/booking-project/internal/logging"
	"github.com/redmonkez12/booking-project/internal/password"
	"github.com/redmonkez12/booking-project/internal/profile"
	"github.com/redmonkez12/booking-project/internal/ratelimit"
	"github.com/redmonkez12/booking-project/internal/storage"
	"github.com/redmonkez12/booking-project/internal/user"
)

// @title           Booking Project Accounts API
// @version         1.0
// @description     Account registration, sessions and traveller profiles for the booking project.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logging.SetDefault(logger)
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	mediaStore, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize media storage: %w", err)
	}

	policy, err := password.NewPolicy(password.PolicyConfig{
		Rules:         cfg.Password.Validators,
		MinLength:     cfg.Password.MinLength,
		MaxSimilarity: cfg.Password.MaxSimilarity,
	})
	if err != nil {
		return fmt.Errorf("failed to configure password policy: %w", err)
	}
	logger.Info("password policy loaded", "rules", policy.Rules())

	// Repositories
	userRepo := user.NewRepository(db)
	profileRepo := profile.NewRepository(db)
	sessionRepo := auth.NewSessionRepository(redisClient)
	passwordResetRepo := auth.NewPasswordResetRepository(redisClient)

	pasetoService, err := auth.NewPasetoService(cfg.Auth.PasetoKey)
	if err != nil {
		return fmt.Errorf("failed to initialize PASETO service: %w", err)
	}

	profileService := profile.NewService(
		profileRepo,
		mediaStore,
		logger,
		cfg.Storage.AvatarPrefix,
		cfg.Storage.ThumbnailWidth,
		cfg.Storage.PresignTTL,
	)

	sessions := auth.NewSessions(sessionRepo, pasetoService, userRepo, cfg.Auth.SessionDuration)
	authService := auth.NewService(
		userRepo,
		sessions,
		passwordResetRepo,
		password.NewHasher(),
		policy,
		email.NewService(cfg.Email),
		profileService,
		logger,
	)

	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.Auth.RateLimitRequests, cfg.Auth.RateLimitWindow)

	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Auth:           auth.NewHandler(authService, rateLimiter, !cfg.Server.IsDevelopment()),
		AuthMiddleware: auth.NewMiddleware(authService.CurrentUser),
		Profile:        profile.NewHandler(profileService),
	}, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	// Let queued welcome and reset emails go out before exiting
	authService.Wait()

	return nil
}

// initRedis connects to Redis and verifies the connection
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

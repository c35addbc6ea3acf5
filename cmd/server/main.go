package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidvault/streaming-api/internal/api"
	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/infrastructure/config"
	mongodb "github.com/vidvault/streaming-api/internal/infrastructure/db/mongo"
	redisdb "github.com/vidvault/streaming-api/internal/infrastructure/db/redis"
	"github.com/vidvault/streaming-api/internal/infrastructure/queue"
	"github.com/vidvault/streaming-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	if err := seedAdmin(ctx, mongodb.NewUserRepository(db), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	// --- Audit workers ---
	audit := queue.NewAuditDispatcher(cfg.Audit.Workers, cfg.Audit.QueueSize, mongodb.NewAuditRepository(db), log)
	audit.Start(ctx)
	defer audit.Stop()

	// --- HTTP server ---
	e := api.NewRouter(cfg, db, rdb, audit, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedAdmin creates the initial administrator account when the user
// collection is empty. Skipped when no bootstrap password is configured.
func seedAdmin(ctx context.Context, users *mongodb.UserRepository, cfg *config.Config, log zerolog.Logger) error {
	n, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if cfg.Bootstrap.AdminPassword == "" {
		log.Warn().Msg("empty user collection and no bootstrap admin password set, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Bootstrap.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &domain.User{
		Username:     cfg.Bootstrap.AdminUsername,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		MaxDevices:   domain.UnlimitedSentinel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := users.Create(ctx, admin); err != nil {
		return err
	}

	log.Info().Str("username", admin.Username).Msg("seeded initial admin account")
	return nil
}

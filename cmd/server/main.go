package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/LoneDev6/review-user-bot/internal/app"
	"github.com/LoneDev6/review-user-bot/internal/config"
	"github.com/LoneDev6/review-user-bot/internal/database"
	"github.com/LoneDev6/review-user-bot/internal/discord"
	"github.com/LoneDev6/review-user-bot/internal/domain"
	"github.com/LoneDev6/review-user-bot/internal/logging"
	"github.com/LoneDev6/review-user-bot/internal/redis"
	"github.com/LoneDev6/review-user-bot/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *database.ReviewRepo {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return database.NewReviewRepo(pool)
}

func setupRedis(cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	repo := setupDB(cfg)

	redisClient := setupRedis(cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	var cache domain.LeaderboardCache
	if redisClient != nil {
		cache = redis.NewLeaderboardCache(redisClient, cfg.LeaderboardCacheTTL)
	}

	notifier := discord.NewWebhookNotifier(cfg.DiscordWebhookURL)
	appSvc := app.NewService(repo, notifier, cache, clock)

	srv := server.NewServer(cfg, appSvc, repo.Pool(), redisClient)

	// One-shot backfill sweep. Fire-and-forget: it never blocks startup and a
	// failed history fetch aborts the sweep, not the process.
	if cfg.ReconcileOnStartup {
		source := discord.NewClient(cfg.DiscordBotToken, cfg.ReviewChannelID)
		reconciler := app.NewReconciler(repo, source, cfg.GuildID)
		go reconciler.Run(context.Background())
	}

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}

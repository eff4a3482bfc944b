package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	DiscordBotToken   string `env:"DISCORD_BOT_TOKEN"`
	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`
	GuildID           string `env:"GUILD_ID"`
	ReviewChannelID   string `env:"REVIEW_CHANNEL_ID"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	ReconcileOnStartup  bool          `env:"RECONCILE_ON_STARTUP" default:"true"`
	LeaderboardCacheTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" default:"30s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":        cfg.DatabaseURL,
		"DISCORD_BOT_TOKEN":   cfg.DiscordBotToken,
		"DISCORD_WEBHOOK_URL": cfg.DiscordWebhookURL,
		"GUILD_ID":            cfg.GuildID,
		"REVIEW_CHANNEL_ID":   cfg.ReviewChannelID,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.LeaderboardCacheTTL <= 0 {
		return fmt.Errorf("LEADERBOARD_CACHE_TTL must be positive")
	}

	return nil
}

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	RiotAPIKey string
	DBPath     string
	LogLevel   string

	// Optional bootstrap player, consulted only when the store has no rows
	// to resume the walk from.
	SeedServer string
	SeedPuuid  string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey: getEnv("RIOT_API_KEY", ""),
		DBPath:     getEnv("DB_PATH", "players.db"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		SeedServer: getEnv("SEED_SERVER", ""),
		SeedPuuid:  getEnv("SEED_PUUID", ""),
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Bool("seed_configured", cfg.SeedServer != "" && cfg.SeedPuuid != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)

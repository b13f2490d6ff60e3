package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	BlizzardClientID     string
	BlizzardClientSecret string
	LogsClientID         string
	LogsClientSecret     string
	DBPath               string
	ServerPort           string
	LogLevel             string
	Environment          string
}

func (c *Config) Production() bool {
	return c.Environment == "production"
}

func Load() (*Config, error) {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg := &Config{
		BlizzardClientID:     getEnv("BLIZZARD_CLIENT_ID", ""),
		BlizzardClientSecret: getEnv("BLIZZARD_CLIENT_SECRET", ""),
		LogsClientID:         getEnv("WARCRAFTLOGS_CLIENT_ID", ""),
		LogsClientSecret:     getEnv("WARCRAFTLOGS_CLIENT_SECRET", ""),
		DBPath:               getEnv("DB_PATH", ""),
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Environment:          getEnv("APP_ENV", "development"),
	}

	if cfg.BlizzardClientID == "" || cfg.BlizzardClientSecret == "" {
		return nil, fmt.Errorf("BLIZZARD_CLIENT_ID and BLIZZARD_CLIENT_SECRET are required")
	}
	if cfg.LogsClientID == "" || cfg.LogsClientSecret == "" {
		return nil, fmt.Errorf("WARCRAFTLOGS_CLIENT_ID and WARCRAFTLOGS_CLIENT_SECRET are required")
	}
	// In development the service degrades to a cache-less mode without a
	// database; production deployments must persist.
	if cfg.DBPath == "" && cfg.Production() {
		return nil, fmt.Errorf("DB_PATH is required in production")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

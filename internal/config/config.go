// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Session backends understood by the serve and chat commands.
const (
	SessionBackendMemory = "memory"
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
)

// Config is the full runtime configuration of the bot.
type Config struct {
	ListenAddr string
	LogLevel   string

	CatalogPath string
	PolicyPath  string

	// Postgres. Empty DSN keeps everything in memory.
	DatabaseDSN string

	SessionBackend string
	SessionDir     string
	SessionTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration
}

// Load reads the configuration. A .env file in the working directory is
// applied first if present; real environment variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:     getEnv("BAKECAKE_LISTEN_ADDR", ":8080"),
		LogLevel:       getEnv("BAKECAKE_LOG_LEVEL", "info"),
		CatalogPath:    getEnv("BAKECAKE_CATALOG", "assets/catalog.yaml"),
		PolicyPath:     getEnv("BAKECAKE_POLICY", "assets/policy.md"),
		DatabaseDSN:    os.Getenv("BAKECAKE_DATABASE_DSN"),
		SessionBackend: getEnv("BAKECAKE_SESSION_BACKEND", SessionBackendMemory),
		SessionDir:     getEnv("BAKECAKE_SESSION_DIR", ".bakecake/sessions"),
		RedisAddr:      getEnv("BAKECAKE_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("BAKECAKE_REDIS_PASSWORD"),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("BAKECAKE_SESSION_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.LockTTL, err = getDuration("BAKECAKE_LOCK_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("BAKECAKE_REDIS_DB", 0); err != nil {
		return nil, err
	}

	switch cfg.SessionBackend {
	case SessionBackendMemory, SessionBackendFile, SessionBackendRedis:
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

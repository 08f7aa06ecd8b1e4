// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration values for the API server and the event worker.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// StoreDriver selects the reservation store: "postgres" (default) or "memory".
	StoreDriver string

	// DatabaseURL is the Postgres connection string. Required when StoreDriver is postgres.
	DatabaseURL string

	// AutoMigrate applies pending migrations at startup.
	AutoMigrate bool

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret is the HMAC key bearer tokens are verified with. Required.
	JWTSecret string

	// StoreTimeout bounds a single admission attempt against the store.
	StoreTimeout time.Duration

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64

	// RedisAddr enables per-user rate limiting of reservation creation when set.
	RedisAddr            string
	RateLimitCapacity    int
	RateLimitRefillEvery time.Duration

	// AMQPURL enables reservation.created events when set.
	AMQPURL     string
	EventsQueue string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set or fail to parse.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		AMQPURL:     os.Getenv("AMQP_URL"),
		EventsQueue: getEnv("EVENTS_QUEUE", "reservation.created"),
	}

	var missing []string
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.StoreDriver == StorePostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var errs []error
	if cfg.StoreDriver != StorePostgres && cfg.StoreDriver != StoreMemory {
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}
	cfg.AutoMigrate = parseEnv("AUTO_MIGRATE", false, strconv.ParseBool, &errs)
	cfg.StoreTimeout = parseEnv("STORE_TIMEOUT", 5*time.Second, time.ParseDuration, &errs)
	cfg.MaxBodyBytes = parseEnv("MAX_BODY_BYTES", int64(1<<20), parseInt64, &errs)
	cfg.RateLimitCapacity = parseEnv("RATE_LIMIT_CAPACITY", 10, strconv.Atoi, &errs)
	cfg.RateLimitRefillEvery = parseEnv("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second, time.ParseDuration, &errs)

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment without overriding variables that are already set.
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config.LoadDotEnv: %s: %w", f, err)
		}
	}
	return nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseEnv parses key with parse, returning fallback when the variable is unset.
// Parse failures are collected into errs.
func parseEnv[T any](key string, fallback T, parse func(string) (T, error), errs *[]error) T {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Snapshot store
	StoreBackend string // file | sqlite | blob
	SnapshotPath string
	SQLitePath   string
	BlobURL      string
	BlobAPIKey   string

	// HTTP client (blob backend)
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Parent auth
	ParentPIN     string // dev fallback, hashed at startup when no hash is set
	ParentPINHash string // bcrypt hash, takes precedence over ParentPIN
	JWTSecret     string
	JWTAccessTTL  time.Duration

	// Background jobs
	HungerRefreshInterval time.Duration
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend: getEnv("STORE_BACKEND", "file"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "data/meow-bank.json"),
		SQLitePath:   getEnv("SQLITE_PATH", "data/meow-bank.db"),
		BlobURL:      getEnv("BLOB_URL", ""),
		BlobAPIKey:   getEnv("BLOB_API_KEY", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		ParentPIN:     getEnv("PARENT_PIN", "1234"),
		ParentPINHash: getEnv("PARENT_PIN_HASH", ""),
		JWTSecret:     getEnv("JWT_SECRET", "meow-bank-default-dev-secret-change-me"),
		JWTAccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 30*time.Minute),

		HungerRefreshInterval: getEnvDuration("HUNGER_REFRESH_INTERVAL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

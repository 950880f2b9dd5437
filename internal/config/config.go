package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Brapi    BrapiConfig
	Sync     SyncConfig
	Auth     AuthConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// BrapiConfig holds settings for the brapi.dev feed client.
type BrapiConfig struct {
	BaseURL           string
	Token             string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// SyncConfig holds settings for dividend synchronization.
type SyncConfig struct {
	// Freshness is the window within which a previous successful fetch
	// suppresses a new one (unless forced).
	Freshness time.Duration
	// Workers bounds the per-ticker sync worker pool.
	Workers int
	// CleanSchedule is the cron expression for the nightly reconciliation
	// pass. Empty disables scheduling.
	CleanSchedule string
}

// AuthConfig holds the fernet key used to verify API keys on mutating
// endpoints. Empty disables the check (local development).
type AuthConfig struct {
	FernetKey string
	KeyTTL    time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/ledger.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Brapi: BrapiConfig{
			BaseURL:           getEnv("BRAPI_BASE_URL", "https://brapi.dev"),
			Token:             getEnv("BRAPI_TOKEN", ""),
			RequestsPerSecond: getEnvFloat("BRAPI_RPS", 0.8),
			Timeout:           getEnvDuration("BRAPI_TIMEOUT", 15*time.Second),
		},
		Sync: SyncConfig{
			Freshness:     getEnvDuration("DIVIDEND_SYNC_FRESHNESS", 24*time.Hour),
			Workers:       getEnvInt("DIVIDEND_SYNC_WORKERS", 4),
			CleanSchedule: getEnv("DIVIDEND_CLEAN_SCHEDULE", "0 3 * * *"),
		},
		Auth: AuthConfig{
			FernetKey: getEnv("API_FERNET_KEY", ""),
			KeyTTL:    getEnvDuration("API_KEY_TTL", 0),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

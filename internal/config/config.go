package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	OTEL    OTELConfig
	Log     LogConfig
	Guided  GuidedConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	CORSOrigins string
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// JWTConfig holds the secret used to verify access tokens
type JWTConfig struct {
	Secret string
}

// OTELConfig holds OpenTelemetry exporter configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
	// URLPath prefixes /v1/traces and /v1/metrics; Grafana Cloud uses "/otlp".
	URLPath     string
	Insecure    bool
	SampleRatio float64
}

// LogConfig holds logrus configuration
type LogConfig struct {
	Level    string
	JSON     bool
	FileName string
}

// GuidedConfig tunes guided workout sessions
type GuidedConfig struct {
	AutoAdvanceDelay   time.Duration
	DefaultRestSeconds int
	SnapshotTTL        time.Duration
	CatalogCacheTTL    time.Duration
	IdleTimeout        time.Duration
	IdempotencyTTL     time.Duration
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "repflow"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "repflow-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
			URLPath:        getEnv("OTEL_URL_PATH", "/otlp"),
			Insecure:       getEnvAsBool("OTEL_INSECURE", false),
			SampleRatio:    getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			JSON:     getEnvAsBool("LOG_JSON", false),
			FileName: getEnv("LOG_FILE", ""),
		},
		Guided: GuidedConfig{
			AutoAdvanceDelay:   time.Duration(getEnvAsInt64("REST_AUTO_ADVANCE_DELAY_MS", 500)) * time.Millisecond,
			DefaultRestSeconds: int(getEnvAsInt64("DEFAULT_REST_SECONDS", 60)),
			SnapshotTTL:        time.Duration(getEnvAsInt64("SESSION_SNAPSHOT_TTL_MINUTES", 180)) * time.Minute,
			CatalogCacheTTL:    time.Duration(getEnvAsInt64("CATALOG_CACHE_TTL_MINUTES", 10)) * time.Minute,
			IdleTimeout:        time.Duration(getEnvAsInt64("SESSION_IDLE_TIMEOUT_MINUTES", 30)) * time.Minute,
			IdempotencyTTL:     time.Duration(getEnvAsInt64("IDEMPOTENCY_TTL_MINUTES", 10)) * time.Minute,
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is set")
	}
	if c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.Guided.AutoAdvanceDelay < 0 {
		return fmt.Errorf("REST_AUTO_ADVANCE_DELAY_MS must not be negative")
	}
	if c.Guided.DefaultRestSeconds <= 0 {
		return fmt.Errorf("DEFAULT_REST_SECONDS must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool accepts the strconv.ParseBool spellings, plus "yes"/"no"
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(os.Getenv(key))
	switch valueStr {
	case "":
		return defaultValue
	case "yes":
		return true
	case "no":
		return false
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat retrieves an environment variable as float64 or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

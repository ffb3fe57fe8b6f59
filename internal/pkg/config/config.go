package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig selects where per-browser storage scopes live.
type StorageConfig struct {
	Backend          string // memory, redis or postgres
	SessionScopeIdle time.Duration
	SweepInterval    time.Duration // postgres only
	Postgres         PostgresConfig
	Redis            RedisConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Secret       string
	CookieName   string
	CookieMaxAge time.Duration
	Secure       bool
}

type PollingConfig struct {
	ChatInterval         time.Duration
	NotificationInterval time.Duration
}

type Config struct {
	Environment       string
	ServiceName       string
	ServerPort        string
	MetricsAddr       string
	OTLPEndpoint      string
	PprofAddr         string
	LogLevel          string
	CORSOrigins       []string
	API               APIConfig
	Session           SessionConfig
	Storage           StorageConfig
	Polling           PollingConfig
	CacheTTL          time.Duration
	DirectoryPageSize int
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

const devSessionSecret = "dev-session-secret-change-me-32-chars"

func Load() (*Config, error) {
	var errs []string
	duration := func(key string, def time.Duration) time.Duration {
		d, err := getDurationOrDefault(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return d
	}

	cfg := &Config{
		Environment:  getEnvOrDefault("APP_ENV", "development"),
		ServiceName:  getEnvOrDefault("SERVICE_NAME", "mentor-portal"),
		ServerPort:   getEnvOrDefault("SERVER_PORT", "8091"),
		MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnvOrDefault("API_BASE_URL", "http://localhost:5000/api"), "/"),
			Timeout: duration("API_TIMEOUT", 15*time.Second),
		},
		Session: SessionConfig{
			Secret:       getEnvOrDefault("SESSION_SECRET", ""),
			CookieName:   getEnvOrDefault("PROFILE_COOKIE", "portal_profile"),
			CookieMaxAge: duration("PROFILE_COOKIE_MAX_AGE", 365*24*time.Hour),
			Secure:       getEnvOrDefault("COOKIE_SECURE", "false") == "true",
		},
		Storage: StorageConfig{
			Backend:          strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", BackendMemory)),
			SessionScopeIdle: duration("SESSION_SCOPE_IDLE", 24*time.Hour),
			SweepInterval:    duration("STORAGE_SWEEP_INTERVAL", 10*time.Minute),
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5454"),
				DB:       getEnvOrDefault("POSTGRES_DB", "mentor_portal"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 10,
				MinConns: 2,
			},
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			},
		},
		Polling: PollingConfig{
			ChatInterval:         duration("CHAT_POLL_INTERVAL", 30*time.Second),
			NotificationInterval: duration("NOTIFICATION_POLL_INTERVAL", 30*time.Second),
		},
		CacheTTL: duration("CACHE_TTL", 5*time.Minute),
	}

	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	pageSize, err := strconv.Atoi(getEnvOrDefault("DIRECTORY_PAGE_SIZE", "12"))
	if err != nil || pageSize <= 0 {
		errs = append(errs, "DIRECTORY_PAGE_SIZE must be a positive integer")
	}
	cfg.DirectoryPageSize = pageSize

	switch cfg.Storage.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.Storage.Postgres.Password == "" {
			errs = append(errs, "POSTGRES_PASSWORD environment variable is required for the postgres storage backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend))
	}

	if cfg.Session.Secret == "" {
		if cfg.Environment != "development" {
			errs = append(errs, "SESSION_SECRET environment variable is required")
		}
		cfg.Session.Secret = devSessionSecret
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by persistence.Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Display      DisplayConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects and locates the key-value backend.
type StoreConfig struct {
	Driver              string
	Path                string
	KeyPrefix           string
	SyncIntervalSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
}

// AuthConfig defines session token and simulated sign-in parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	SimulatedDelayMillis  int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// DisplayConfig controls how timestamps are rendered.
type DisplayConfig struct {
	Timezone          string
	LiveRefreshMillis int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-desk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Driver:              strings.ToLower(getEnv("STORE_DRIVER", DriverMemory)),
			Path:                getEnv("STORE_PATH", "data"),
			KeyPrefix:           getEnv("STORE_KEY_PREFIX", "ticketApp_"),
			SyncIntervalSeconds: getEnvAsInt("STORE_SYNC_INTERVAL_SECONDS", 0),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			SimulatedDelayMillis:  getEnvAsInt("AUTH_SIMULATED_DELAY_MS", 1000),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", ""),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
		Display: DisplayConfig{
			Timezone:          getEnv("DISPLAY_TIMEZONE", "UTC"),
			LiveRefreshMillis: getEnvAsInt("DISPLAY_LIVE_REFRESH_MS", 60000),
		},
	}

	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Display.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func (s StoreConfig) validate() error {
	switch s.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverRedis, DriverPostgres:
		return nil
	}
	return fmt.Errorf("invalid STORE_DRIVER %q", s.Driver)
}

// SyncInterval returns the storage refresh period, zero when disabled.
func (s StoreConfig) SyncInterval() time.Duration {
	if s.SyncIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(s.SyncIntervalSeconds) * time.Second
}

// SimulatedDelay returns the artificial identity-provider latency.
func (a AuthConfig) SimulatedDelay() time.Duration {
	if a.SimulatedDelayMillis <= 0 {
		return 0
	}
	return time.Duration(a.SimulatedDelayMillis) * time.Millisecond
}

// Location resolves the display timezone.
func (d DisplayConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", d.Timezone, err)
	}
	return loc, nil
}

// LiveRefresh returns the live timestamp refresh interval.
func (d DisplayConfig) LiveRefresh() time.Duration {
	if d.LiveRefreshMillis <= 0 {
		return time.Minute
	}
	return time.Duration(d.LiveRefreshMillis) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

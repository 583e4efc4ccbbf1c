package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/quildacademy/quild-backend/internal/data/db"
	"github.com/quildacademy/quild-backend/internal/observability"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	LogMode string `env:"LOG_MODE" envDefault:"development"`

	DBDriver         string        `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string        `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string        `env:"POSTGRES_PASSWORD"`
	PostgresName     string        `env:"POSTGRES_NAME" envDefault:"quild"`
	PostgresSSLMode  string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	SQLitePath       string        `env:"SQLITE_PATH"`
	SlowQuery        time.Duration `env:"DB_SLOW_QUERY" envDefault:"1s"`

	RedisAddr           string        `env:"REDIS_ADDR"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" envDefault:"0"`
	LeaderboardCacheTTL time.Duration `env:"LEADERBOARD_CACHE_TTL" envDefault:"30s"`
	ProgressLockTTL     time.Duration `env:"PROGRESS_LOCK_TTL" envDefault:"10s"`

	SessionPublicKey  string   `env:"CLERK_JWT_KEY"`
	SessionSecret     string   `env:"AUTH_JWT_SECRET"`
	AuthorizedParties []string `env:"AUTH_AUTHORIZED_PARTIES" envSeparator:","`

	IdentitySecretKey string `env:"CLERK_SECRET_KEY"`
	IdentityAPIURL    string `env:"CLERK_API_URL" envDefault:"https://api.clerk.com/v1"`
	WebhookSecret     string `env:"CLERK_WEBHOOK_SECRET"`

	SeedEndpointEnabled bool   `env:"SEED_ENDPOINT_ENABLED" envDefault:"false"`
	StreakTimezone      string `env:"STREAK_TIMEZONE" envDefault:"UTC"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	OtelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"quild-backend"`
	OtelEnvironment string  `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OtelVersion     string  `env:"OTEL_SERVICE_VERSION"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`

	streakLocation *time.Location
}

// LoadConfig reads .env files (when present) into the process environment and
// parses the result.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(strings.TrimSpace(c.StreakTimezone))
	if err != nil {
		return fmt.Errorf("STREAK_TIMEZONE: %w", err)
	}
	c.streakLocation = loc
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverPostgres:
	case db.DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if strings.TrimSpace(c.SessionPublicKey) == "" && strings.TrimSpace(c.SessionSecret) == "" {
		return fmt.Errorf("one of CLERK_JWT_KEY or AUTH_JWT_SECRET is required")
	}
	return nil
}

func (c Config) StreakLocation() *time.Location {
	if c.streakLocation == nil {
		return time.UTC
	}
	return c.streakLocation
}

func (c Config) Database() db.Config {
	return db.Config{
		Driver:           c.DBDriver,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		PostgresSSLMode:  c.PostgresSSLMode,
		SQLitePath:       c.SQLitePath,
		SlowThreshold:    c.SlowQuery,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.OtelEnvironment,
		Version:     c.OtelVersion,
		SampleRatio: c.OtelSampleRatio,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
	}
}

func (c Config) Address() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}

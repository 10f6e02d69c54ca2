package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"3000"`

	// the demo roster is loaded at boot unless disabled
	SeedRoster bool `env:"SEED_ROSTER" envDefault:"true"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	MaxBodyBytes   int64    `env:"MAX_BODY_BYTES" envDefault:"65536"`

	RateLimit       int           `env:"RATE_LIMIT" envDefault:"120"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	ListCacheTTL time.Duration `env:"USERS_CACHE_TTL" envDefault:"5s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Redis RedisConfig
	OTel  OTelConfig
}

// Redis is optional. With an empty address roster events go to the log only.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Stream   string `env:"REDIS_STREAM" envDefault:"roster:events"`
	MaxLen   int64  `env:"REDIS_STREAM_MAXLEN" envDefault:"1000"`
}

type OTelConfig struct {
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"rosterhub-api"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}
	if c.RateLimit < 1 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit must allow at least one request per window")
	}
	if c.Redis.Addr != "" && c.Redis.Stream == "" {
		return fmt.Errorf("redis stream name is required when redis is enabled")
	}

	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

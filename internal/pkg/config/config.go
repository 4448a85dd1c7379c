package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Limits  LimitConfig
}

type BackendConfig struct {
	URL string `env:"BACKEND_URL, default=http://localhost:4000"`
	// AuthScheme is "bearer" or "subject-header".
	AuthScheme string        `env:"BACKEND_AUTH_SCHEME, default=bearer"`
	Timeout    time.Duration `env:"BACKEND_TIMEOUT,     default=10s"`
}

type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET, required"`
	TTL    time.Duration `env:"SESSION_TTL,    default=24h"`
	// Store is "redis", "mongo" or "memory".
	Store        string `env:"SESSION_STORE,         default=redis"`
	CookieName   string `env:"SESSION_COOKIE,        default=inv_sid"`
	CookieSecure bool   `env:"SESSION_COOKIE_SECURE, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=inventory_web"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type LimitConfig struct {
	AuthRatePerSec float64 `env:"AUTH_RATE_PER_SEC, default=1"`
	AuthBurst      int     `env:"AUTH_RATE_BURST,   default=5"`
}

// Production reports whether ENV is "production".
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
// Outside production a .env file in the working directory is loaded first;
// variables already set in the environment win.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith processes configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	if os.Getenv("ENV") != "production" {
		// A missing .env is the normal case in containers.
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

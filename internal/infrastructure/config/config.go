package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// DefaultTenantSlug is the explicit fallback tenant used when a request
	// carries no slug and its host matches no registered domain.
	DefaultTenantSlug string `env:"DEFAULT_TENANT_SLUG, default=default"`

	JWT       JWTConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig

	BcryptCost int `env:"BCRYPT_COST, default=12"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"JWT_EXPIRES_IN,         default=168h"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_EXPIRES_IN, default=720h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=admin_portal"`
}

type RedisConfig struct {
	// Addr left empty disables Redis: rate limiting then runs in-process.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM, default=noreply@saasportal.io"`
}

type RateLimitConfig struct {
	AuthMax    int64         `env:"RATE_LIMIT_AUTH_MAX,    default=10"`
	AuthWindow time.Duration `env:"RATE_LIMIT_AUTH_WINDOW, default=1m"`
	APIMax     int64         `env:"RATE_LIMIT_API_MAX,     default=300"`
	APIWindow  time.Duration `env:"RATE_LIMIT_API_WINDOW,  default=1m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Production reports whether the service runs with production hardening
// (JSON logs, secure cookies).
func (c *Config) Production() bool {
	return c.Env == "production"
}

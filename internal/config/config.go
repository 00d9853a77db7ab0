package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port               int    `env:"PORT" envDefault:"8080"`
	DatabaseURL        string `env:"DATABASE_URL,required"`
	RedisURL           string `env:"REDIS_URL,required"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	OAuthRedirectBase  string `env:"OAUTH_REDIRECT_BASE"`
	PostAuthRedirect   string `env:"POST_AUTH_REDIRECT" envDefault:"/settings/integrations"`
	ServiceKeyHash     string `env:"SERVICE_KEY_HASH"`
	HandoffTTLMinutes  int    `env:"HANDOFF_TTL_MINUTES" envDefault:"30"`
	SyncIntervalMin    int    `env:"SYNC_INTERVAL_MINUTES" envDefault:"60"`
	MigrationsPath     string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) HandoffTTL() time.Duration {
	return time.Duration(c.HandoffTTLMinutes) * time.Minute
}

func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMin) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.ServiceKeyHash != "" {
		if !strings.HasPrefix(c.ServiceKeyHash, "$2a$") &&
			!strings.HasPrefix(c.ServiceKeyHash, "$2b$") &&
			!strings.HasPrefix(c.ServiceKeyHash, "$2y$") {
			return fmt.Errorf("SERVICE_KEY_HASH must be a bcrypt hash (generate with: go run scripts/hash-key.go <key>)")
		}
	}

	if c.OAuthRedirectBase != "" && strings.HasSuffix(c.OAuthRedirectBase, "/") {
		return fmt.Errorf("OAUTH_REDIRECT_BASE must not end with a trailing slash")
	}

	if isProduction {
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
			log.Warn().Msg("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET are empty in production: Google integrations disabled")
		}
		if strings.HasPrefix(c.OAuthRedirectBase, "http://") {
			log.Warn().Msg("OAUTH_REDIRECT_BASE uses http:// in production: consider using https://")
		}
		if c.ServiceKeyHash == "" {
			log.Warn().Msg("SERVICE_KEY_HASH is empty in production: service-key sync triggers disabled")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

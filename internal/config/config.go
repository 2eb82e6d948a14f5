package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	RemoteConfigURL  string        `env:"REMOTE_CONFIG_URL" envDefault:"https://config.confpay.app/site-config.json" validate:"required,url"`
	DefaultEventsURL string        `env:"DEFAULT_EVENTS_URL" envDefault:"https://config.confpay.app/events.json" validate:"required,url"`
	FetchTimeout     time.Duration `env:"REMOTE_FETCH_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	// Environment fallbacks, consulted only when the remote config omits keys.
	StripeSecretKey      string `env:"STRIPE_SECRET_KEY"`
	StripePublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`

	Currency            string `env:"CURRENCY" envDefault:"usd" validate:"required,len=3,alpha"`
	StatementDescriptor string `env:"STATEMENT_DESCRIPTOR" envDefault:"CONFPAY EVENT" validate:"required,max=22"`

	CatalogCacheProvider  string        `env:"CATALOG_CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	CatalogCacheTTL       time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"0s"`
	RedisConnectionString string        `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CatalogCacheProvider redis"`

	BaseURL   string     `env:"BASE_URL" validate:"omitempty,url"`
	SentryDSN string     `env:"SENTRY_DSN"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	// Stripe rejects statement descriptors containing these characters.
	if strings.ContainsAny(c.StatementDescriptor, `<>\"'*`) {
		return fmt.Errorf("STATEMENT_DESCRIPTOR must not contain <, >, \\, \", ' or *")
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	return nil
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

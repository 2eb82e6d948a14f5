// Package remoteconfig loads the remotely hosted site configuration.
//
// The configuration is fetched at most once per process lifetime. A failed
// fetch is absorbed into an empty fallback and never retried: missing Stripe
// keys are supplied by environment fallbacks or placeholders, and missing
// endpoint URLs fall back to hardcoded defaults at the call sites that need
// them.
package remoteconfig

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	placeholderPublishableKey = "pk_test_placeholder"
	placeholderSecretKey      = "sk_test_placeholder"
)

type StripeKeys struct {
	PublishableKey string `json:"publishableKey"`
	SecretKey      string `json:"secretKey"`
}

type Endpoints struct {
	EventsURL   string `json:"eventsUrl"`
	RedirectURL string `json:"redirectUrl"`
}

// RemoteConfig is the immutable process-lifetime configuration snapshot.
type RemoteConfig struct {
	Stripe    StripeKeys `json:"stripe"`
	Endpoints Endpoints  `json:"endpoints"`
}

type jsonFetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
}

// Options carries the construction inputs for a Cache.
type Options struct {
	URL string

	// Environment-level fallbacks, consulted only when the remote config
	// omits the corresponding key.
	FallbackPublishableKey string
	FallbackSecretKey      string
}

// Cache holds the one-shot remote configuration snapshot. It is constructed
// once in app wiring and passed into every component that needs it.
type Cache struct {
	fetcher jsonFetcher
	opts    Options
	logger  *slog.Logger

	once   sync.Once
	cfg    RemoteConfig
	loaded atomic.Bool
}

func NewCache(fetcher jsonFetcher, opts Options, logger *slog.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		opts:    opts,
		logger:  logger,
	}
}

// Config returns the configuration snapshot, fetching it on first call.
// Fetch or parse failures produce the empty fallback; the failed attempt is
// never repeated.
func (c *Cache) Config(ctx context.Context) RemoteConfig {
	c.once.Do(func() {
		var cfg RemoteConfig
		if err := c.fetcher.FetchJSON(ctx, c.opts.URL, &cfg); err != nil {
			if c.logger != nil {
				c.logger.Warn("remote config unavailable, using fallback", "url", c.opts.URL, "error", err)
			}
			c.cfg = RemoteConfig{}
			return
		}
		c.cfg = cfg
		c.loaded.Store(true)
		if c.logger != nil {
			c.logger.Info("remote config loaded", "url", c.opts.URL)
		}
	})
	return c.cfg
}

// Loaded reports whether the remote snapshot (rather than the fallback) is in
// effect. False until the first Config call completes successfully.
func (c *Cache) Loaded() bool {
	return c.loaded.Load()
}

// RedirectURL returns the post-payment redirect target, if the remote config
// names one.
func (c *Cache) RedirectURL(ctx context.Context) string {
	return strings.TrimSpace(c.Config(ctx).Endpoints.RedirectURL)
}

// PublishableKey prefers the remote config value, then the environment
// fallback, then a hardcoded placeholder.
func (c *Cache) PublishableKey(ctx context.Context) string {
	if key := strings.TrimSpace(c.Config(ctx).Stripe.PublishableKey); key != "" {
		return key
	}
	if key := strings.TrimSpace(c.opts.FallbackPublishableKey); key != "" {
		return key
	}
	return placeholderPublishableKey
}

// SecretKey prefers the remote config value, then the environment fallback,
// then a hardcoded placeholder.
func (c *Cache) SecretKey(ctx context.Context) string {
	if key := strings.TrimSpace(c.Config(ctx).Stripe.SecretKey); key != "" {
		return key
	}
	if key := strings.TrimSpace(c.opts.FallbackSecretKey); key != "" {
		return key
	}
	return placeholderSecretKey
}

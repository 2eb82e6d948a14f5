package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"

	"github.com/confpayapp/confpay/internal/cache"
	"github.com/confpayapp/confpay/internal/catalog"
	"github.com/confpayapp/confpay/internal/config"
	"github.com/confpayapp/confpay/internal/handlers"
	"github.com/confpayapp/confpay/internal/logging"
	"github.com/confpayapp/confpay/internal/payment"
	"github.com/confpayapp/confpay/internal/processor"
	"github.com/confpayapp/confpay/internal/remote"
	"github.com/confpayapp/confpay/internal/remoteconfig"
	"github.com/confpayapp/confpay/internal/services"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	CacheProvider cache.Provider
	RemoteConfig  *remoteconfig.Cache
	Handlers      *handlers.Handlers

	sentryEnabled bool
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sentryEnabled := strings.TrimSpace(cfg.SentryDSN) != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:        cfg.SentryDSN,
			EnableLogs: true,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
	}

	logger := newLogger(cfg, sentryEnabled)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	fetcher := remote.NewFetcher(cfg.FetchTimeout, logger.With("component", "fetcher"))

	remoteCfg := remoteconfig.NewCache(fetcher, remoteconfig.Options{
		URL:                    cfg.RemoteConfigURL,
		FallbackPublishableKey: cfg.StripePublishableKey,
		FallbackSecretKey:      cfg.StripeSecretKey,
	}, logger.With("component", "remote_config"))

	// The one fetch attempt of the process lifetime happens here; a failure
	// is absorbed into the fallback and the server still comes up.
	remoteCfg.Config(startupCtx)

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CatalogCacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	resolver := catalog.NewResolver(
		fetcher,
		remoteCfg,
		cfg.DefaultEventsURL,
		cacheProvider,
		cfg.CatalogCacheTTL,
		logger.With("component", "catalog"),
	)

	// Failing to establish a processor client is the one fatal startup
	// condition.
	stripeClient, err := processor.NewStripeClient(remoteCfg.SecretKey(startupCtx))
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		return nil, fmt.Errorf("failed to initialize payment processor client: %w", err)
	}

	paymentService := services.NewPaymentService(
		resolver,
		stripeClient,
		cfg.Currency,
		cfg.StatementDescriptor,
		logger.With("component", "payment_service"),
	)
	checkoutService := services.NewCheckoutService(
		resolver,
		payment.NewAmountResolver(),
		remoteCfg,
		logger.With("component", "checkout_service"),
	)

	h, err := handlers.New(handlers.Dependencies{
		Config:       cfg,
		RemoteConfig: remoteCfg,
		Catalog:      resolver,
		Checkout:     checkoutService,
		Payments:     paymentService,
		Logger:       logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		CacheProvider: cacheProvider,
		RemoteConfig:  remoteCfg,
		Handlers:      h,
		sentryEnabled: sentryEnabled,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}

func newLogger(cfg *config.Config, sentryEnabled bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.LogFormat)) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel})
	}

	if sentryEnabled {
		sentryHandler := sentryslog.Option{
			EventLevel: []slog.Level{slog.LevelError},
			LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelInfo},
		}.NewSentryHandler(context.Background())
		handler = logging.MultiHandler(handler, sentryHandler)
	}

	return slog.New(handler)
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}

// Package catalog resolves conference events from the remotely hosted
// event catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/confpayapp/confpay/internal/cache"
	"github.com/confpayapp/confpay/internal/remoteconfig"
)

// Event is a purchasable catalog entry. Cost is the default ticket price in
// whole currency units.
type Event struct {
	ID          string  `json:"eventId"`
	Name        string  `json:"eventName"`
	Description string  `json:"eventDescription"`
	Cost        float64 `json:"cost"`
}

// ErrEventNotFound marks an identifier absent from the catalog, as opposed
// to a catalog fetch or parse failure.
var ErrEventNotFound = errors.New("event not found")

type jsonFetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
}

type configSource interface {
	Config(ctx context.Context) remoteconfig.RemoteConfig
}

// Resolver looks up events in the remote catalog. By default the catalog is
// fetched on every call so pricing is always fresh; setting a non-zero TTL
// trades that for a bounded staleness window served from the cache provider.
type Resolver struct {
	fetcher    jsonFetcher
	config     configSource
	defaultURL string
	cache      cache.Provider
	ttl        time.Duration
	logger     *slog.Logger
}

func NewResolver(fetcher jsonFetcher, config configSource, defaultURL string, cacheProvider cache.Provider, ttl time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher:    fetcher,
		config:     config,
		defaultURL: defaultURL,
		cache:      cacheProvider,
		ttl:        ttl,
		logger:     logger,
	}
}

// ListEvents returns the full catalog.
func (r *Resolver) ListEvents(ctx context.Context) ([]Event, error) {
	url := r.eventsURL(ctx)

	if events, ok := r.cachedEvents(ctx, url); ok {
		return events, nil
	}

	var events []Event
	if err := r.fetcher.FetchJSON(ctx, url, &events); err != nil {
		return nil, err
	}

	r.storeEvents(ctx, url, events)
	return events, nil
}

// ResolveEvent returns the catalog entry with the given identifier, or
// ErrEventNotFound if no entry matches.
func (r *Resolver) ResolveEvent(ctx context.Context, eventID string) (*Event, error) {
	events, err := r.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	for i := range events {
		if events[i].ID == eventID {
			return &events[i], nil
		}
	}
	return nil, ErrEventNotFound
}

func (r *Resolver) eventsURL(ctx context.Context) string {
	if url := strings.TrimSpace(r.config.Config(ctx).Endpoints.EventsURL); url != "" {
		return url
	}
	return r.defaultURL
}

func (r *Resolver) cachedEvents(ctx context.Context, url string) ([]Event, bool) {
	if r.ttl <= 0 || r.cache == nil {
		return nil, false
	}

	raw, err := r.cache.Get(ctx, cache.CatalogKey(url))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) && r.logger != nil {
			r.logger.Warn("catalog cache read failed", "error", err)
		}
		return nil, false
	}

	var events []Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		if r.logger != nil {
			r.logger.Warn("discarding undecodable catalog cache entry", "error", err)
		}
		_ = r.cache.Delete(ctx, cache.CatalogKey(url))
		return nil, false
	}
	return events, true
}

func (r *Resolver) storeEvents(ctx context.Context, url string, events []Event) {
	if r.ttl <= 0 || r.cache == nil {
		return
	}

	raw, err := json.Marshal(events)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cache.CatalogKey(url), string(raw), r.ttl); err != nil && r.logger != nil {
		r.logger.Warn("catalog cache write failed", "error", err)
	}
}

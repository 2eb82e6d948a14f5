// Package remote fetches JSON documents from remotely hosted sources.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/confpayapp/confpay/internal/observability"
)

const maxBodyBytes = 4 << 20 // 4 MB

// FetchError reports a transport-level failure: the request never completed
// or the source answered with a non-2xx status.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a completed response whose body was not valid JSON.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Fetcher performs single-shot HTTP GETs and decodes the response as JSON.
// Failures are never retried and bodies are never partially returned.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: observability.NewHTTPClient(timeout),
		logger: logger,
	}
}

// FetchJSON issues one GET against url and unmarshals the body into v.
func (f *Fetcher) FetchJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{URL: url, Err: err}
	}

	if f.logger != nil {
		f.logger.Debug("fetched remote resource", "url", url, "bytes", len(body))
	}
	return nil
}

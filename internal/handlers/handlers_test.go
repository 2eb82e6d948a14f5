package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/confpayapp/confpay/internal/catalog"
	"github.com/confpayapp/confpay/internal/config"
	"github.com/confpayapp/confpay/internal/payment"
	"github.com/confpayapp/confpay/internal/processor"
	"github.com/confpayapp/confpay/internal/remoteconfig"
	"github.com/confpayapp/confpay/internal/services"
)

type fakeFetcher struct {
	payloads map[string]string
	err      error
}

func (f *fakeFetcher) FetchJSON(_ context.Context, url string, v any) error {
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payloads[url]), v)
}

type fakeProcessor struct {
	charge *processor.Charge
	err    error
}

func (f *fakeProcessor) CreateCharge(context.Context, processor.ChargeParams) (*processor.Charge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.charge, nil
}

const (
	testConfigURL = "https://example.com/site-config.json"
	testEventsURL = "https://example.com/events.json"
)

func newTestHandlers(t *testing.T, fetcher *fakeFetcher, proc processor.Client) *Handlers {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	remoteCfg := remoteconfig.NewCache(fetcher, remoteconfig.Options{URL: testConfigURL}, logger)
	resolver := catalog.NewResolver(fetcher, remoteCfg, testEventsURL, nil, 0, logger)

	h, err := New(Dependencies{
		Config:       &config.Config{Port: "8080"},
		RemoteConfig: remoteCfg,
		Catalog:      resolver,
		Checkout:     services.NewCheckoutService(resolver, payment.NewAmountResolver(), remoteCfg, logger),
		Payments:     services.NewPaymentService(resolver, proc, "usd", "CONFPAY EVENT", logger),
		Logger:       logger,
	})
	if err != nil {
		t.Fatalf("failed to build handlers: %v", err)
	}
	return h
}

func defaultFetcher() *fakeFetcher {
	return &fakeFetcher{payloads: map[string]string{
		testConfigURL: `{"stripe":{"publishableKey":"pk_test_abc"},"endpoints":{}}`,
		testEventsURL: `[{"eventId":"RS2025AI","eventName":"Reality Summit 2025","eventDescription":"AI track","cost":299}]`,
	}}
}

func newRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/checkout", h.Checkout).Methods("GET")
	r.HandleFunc("/api/payments", h.ProcessPayment).Methods("POST")
	r.HandleFunc("/api/events", h.ListEvents).Methods("GET")
	r.HandleFunc("/api/events/{eventId}", h.GetEvent).Methods("GET")
	return r
}

func TestListEvents(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(t, defaultFetcher(), &fakeProcessor{})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var events []catalog.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(events) != 1 || events[0].ID != "RS2025AI" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestListEventsCatalogUnavailable(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(t, &fakeFetcher{err: errors.New("down")}, &fakeProcessor{})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestGetEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "found", path: "/api/events/RS2025AI", wantStatus: http.StatusOK},
		{name: "not found", path: "/api/events/GHOST", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandlers(t, defaultFetcher(), &fakeProcessor{})

			rec := httptest.NewRecorder()
			newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		fetcher    *fakeFetcher
		wantLoaded bool
	}{
		{name: "config loaded", fetcher: defaultFetcher(), wantLoaded: true},
		{name: "config fallback", fetcher: &fakeFetcher{err: errors.New("down")}, wantLoaded: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandlers(t, tt.fetcher, &fakeProcessor{})
			// Trigger the one-time config load the way app startup does.
			h.remoteConfig.Config(context.Background())

			rec := httptest.NewRecorder()
			newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}

			var body struct {
				Status       string `json:"status"`
				ConfigLoaded bool   `json:"configLoaded"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.ConfigLoaded != tt.wantLoaded {
				t.Errorf("expected configLoaded=%v, got %v", tt.wantLoaded, body.ConfigLoaded)
			}
		})
	}
}

func TestProcessPayment(t *testing.T) {
	t.Parallel()

	validBody := `{
		"token":"tok_visa",
		"eventId":"RS2025AI",
		"customerName":"Ada Lovelace",
		"customerEmail":"ada@example.com",
		"customerPhone":"+15551234567",
		"amountMinorUnits":29900
	}`

	tests := []struct {
		name         string
		body         string
		proc         *fakeProcessor
		wantStatus   int
		wantSuccess  bool
		wantCategory string
	}{
		{
			name:        "success",
			body:        validBody,
			proc:        &fakeProcessor{charge: &processor.Charge{ID: "ch_123", Status: "succeeded"}},
			wantStatus:  http.StatusOK,
			wantSuccess: true,
		},
		{
			name:         "card declined",
			body:         validBody,
			proc:         &fakeProcessor{err: &processor.Error{Kind: processor.KindCard, Message: "Your card was declined."}},
			wantStatus:   http.StatusPaymentRequired,
			wantCategory: "CardError",
		},
		{
			name:         "missing fields",
			body:         `{"eventId":"RS2025AI"}`,
			proc:         &fakeProcessor{},
			wantStatus:   http.StatusBadRequest,
			wantCategory: "MissingFields",
		},
		{
			name:         "undecodable body",
			body:         `{"eventId":`,
			proc:         &fakeProcessor{},
			wantStatus:   http.StatusBadRequest,
			wantCategory: "MissingFields",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandlers(t, defaultFetcher(), tt.proc)

			req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			newRouter(h).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			var result services.ChargeResult
			if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("expected success=%v, got %v", tt.wantSuccess, result.Success)
			}
			if tt.wantCategory != "" && result.ErrorCategory != tt.wantCategory {
				t.Errorf("expected category %s, got %s", tt.wantCategory, result.ErrorCategory)
			}
		})
	}
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "catalog price",
			target:     "/checkout?event=RS2025AI",
			wantStatus: http.StatusOK,
			wantBody:   "$299.00",
		},
		{
			name:       "override applied",
			target:     "/checkout?event=RS2025AI&pay=450",
			wantStatus: http.StatusOK,
			wantBody:   "$450.00",
		},
		{
			name:       "override out of range",
			target:     "/checkout?event=RS2025AI&pay=0.5",
			wantStatus: http.StatusBadRequest,
			wantBody:   "between 1 and 10000",
		},
		{
			name:       "override malformed",
			target:     "/checkout?event=RS2025AI&pay=lots",
			wantStatus: http.StatusBadRequest,
			wantBody:   "positive number",
		},
		{
			name:       "missing event",
			target:     "/checkout",
			wantStatus: http.StatusBadRequest,
			wantBody:   "event must be selected",
		},
		{
			name:       "unknown event",
			target:     "/checkout?event=GHOST",
			wantStatus: http.StatusNotFound,
			wantBody:   "find that event",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandlers(t, defaultFetcher(), &fakeProcessor{})

			rec := httptest.NewRecorder()
			newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q, got: %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		RemoteConfigURL:       "https://config.confpay.app/site-config.json",
		DefaultEventsURL:      "https://config.confpay.app/events.json",
		FetchTimeout:          10 * time.Second,
		Currency:              "usd",
		StatementDescriptor:   "CONFPAY EVENT",
		CatalogCacheProvider:  "memory",
		RedisConnectionString: "redis://localhost:6379/0",
		LogFormat:             "text",
		Port:                  "8080",
	}
}

func TestValidateStatementDescriptor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		descriptor string
		wantErr    bool
	}{
		{
			name:       "valid descriptor",
			descriptor: "CONFPAY EVENT",
			wantErr:    false,
		},
		{
			name:       "too long",
			descriptor: strings.Repeat("X", 23),
			wantErr:    true,
		},
		{
			name:       "forbidden character",
			descriptor: `CONFPAY "EVENT"`,
			wantErr:    true,
		},
		{
			name:       "empty",
			descriptor: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.StatementDescriptor = tt.descriptor

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateCacheProvider(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CatalogCacheProvider = "invalid"

	err := cfg.validate()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "CatalogCacheProvider") || !strings.Contains(err.Error(), "oneof") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "empty allowed", baseURL: "", wantErr: false},
		{name: "https", baseURL: "https://pay.confpay.app", wantErr: false},
		{name: "http localhost allowed", baseURL: "http://localhost:8080", wantErr: false},
		{name: "http remote rejected", baseURL: "http://pay.confpay.app", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.BaseURL = tt.baseURL

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Currency != "usd" {
		t.Errorf("expected default currency usd, got %s", cfg.Currency)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("expected default fetch timeout 10s, got %s", cfg.FetchTimeout)
	}
	if cfg.CatalogCacheTTL != 0 {
		t.Errorf("expected catalog caching disabled by default, got %s", cfg.CatalogCacheTTL)
	}
}

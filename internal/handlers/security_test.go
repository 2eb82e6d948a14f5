package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(t, defaultFetcher(), &fakeProcessor{})

	handler := h.SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	want := map[string]string{
		"X-Content-Type-Options":     "nosniff",
		"X-Frame-Options":            "DENY",
		"Referrer-Policy":            "strict-origin-when-cross-origin",
		"Cross-Origin-Opener-Policy": "same-origin",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Errorf("expected %s=%s, got %s", header, value, got)
		}
	}
}

func TestRequireSameOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		origin     string
		referer    string
		wantStatus int
	}{
		{
			name:       "GET passes without origin",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST without origin or referer blocked",
			method:     http.MethodPost,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with same-host origin allowed",
			method:     http.MethodPost,
			origin:     "http://example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with foreign origin blocked",
			method:     http.MethodPost,
			origin:     "http://evil.example.net",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST with same-host referer allowed",
			method:     http.MethodPost,
			referer:    "http://example.com/checkout?event=RS2025AI",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandlers(t, defaultFetcher(), &fakeProcessor{})
			handler := h.RequireSameOrigin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "http://example.com/api/payments", strings.NewReader("{}"))
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

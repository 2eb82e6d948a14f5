package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/confpayapp/confpay/internal/catalog"
	"github.com/confpayapp/confpay/internal/config"
	"github.com/confpayapp/confpay/internal/logging"
	"github.com/confpayapp/confpay/internal/remoteconfig"
	"github.com/confpayapp/confpay/internal/services"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// Handlers provides the HTTP request handlers for the payment API and the
// checkout flow.
type Handlers struct {
	config       *config.Config
	remoteConfig *remoteconfig.Cache
	catalog      *catalog.Resolver
	checkout     *services.CheckoutService
	payments     *services.PaymentService
	logger       *slog.Logger
}

type Dependencies struct {
	Config       *config.Config
	RemoteConfig *remoteconfig.Cache
	Catalog      *catalog.Resolver
	Checkout     *services.CheckoutService
	Payments     *services.PaymentService
	Logger       *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.RemoteConfig == nil {
		return nil, fmt.Errorf("handlers dependencies: remoteConfig is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("handlers dependencies: catalog is required")
	}
	if deps.Checkout == nil {
		return nil, fmt.Errorf("handlers dependencies: checkout is required")
	}
	if deps.Payments == nil {
		return nil, fmt.Errorf("handlers dependencies: payments is required")
	}

	return &Handlers{
		config:       deps.Config,
		remoteConfig: deps.RemoteConfig,
		catalog:      deps.Catalog,
		checkout:     deps.Checkout,
		payments:     deps.Payments,
		logger:       logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/events", http.StatusSeeOther)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"configLoaded": h.remoteConfig.Loaded(),
	})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.loggerFromContext(ctx).Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(ctx context.Context, w http.ResponseWriter, status int, code string) {
	h.writeJSON(ctx, w, status, map[string]string{"error": code})
}

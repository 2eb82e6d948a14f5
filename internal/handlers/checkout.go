package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/confpayapp/confpay/internal/catalog"
	"github.com/confpayapp/confpay/internal/payment"
	"github.com/confpayapp/confpay/internal/remote"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var checkoutTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Checkout renders the checkout page for an event, applying an optional
// caller-supplied price override (?pay=).
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	eventID := strings.TrimSpace(r.URL.Query().Get("event"))
	if eventID == "" {
		h.renderError(w, http.StatusBadRequest, "An event must be selected before checkout.")
		return
	}
	override := r.URL.Query().Get("pay")

	details, err := h.checkout.Prepare(ctx, eventID, override)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrEventNotFound):
			h.renderError(w, http.StatusNotFound, "We couldn't find that event.")
		case errors.Is(err, payment.ErrInvalidAmount):
			h.renderError(w, http.StatusBadRequest, "The payment amount must be a positive number.")
		case errors.Is(err, payment.ErrOutOfRange):
			h.renderError(w, http.StatusBadRequest, "The payment amount must be between 1 and 10000.")
		default:
			var fetchErr *remote.FetchError
			var parseErr *remote.ParseError
			if errors.As(err, &fetchErr) || errors.As(err, &parseErr) {
				logger.Error("checkout catalog lookup failed", "event_id", eventID, "error", err)
				h.renderError(w, http.StatusBadGateway, "The event catalog is temporarily unavailable.")
				return
			}
			logger.Error("checkout preparation failed", "event_id", eventID, "error", err)
			h.renderError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := checkoutTemplates.ExecuteTemplate(w, "checkout.html.tmpl", details); err != nil {
		logger.Error("failed to render checkout page", "error", err)
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = checkoutTemplates.ExecuteTemplate(w, "error.html.tmpl", map[string]any{
		"Status":  status,
		"Message": message,
	})
}

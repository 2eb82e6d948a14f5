package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/confpayapp/confpay/internal/catalog"
)

// ListEvents returns the full event catalog.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.catalog.ListEvents(ctx)
	if err != nil {
		h.loggerFromContext(ctx).Error("failed to list events", "error", err)
		h.writeError(ctx, w, http.StatusBadGateway, "catalog_unavailable")
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, events)
}

// GetEvent returns a single catalog entry by identifier.
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := mux.Vars(r)["eventId"]

	event, err := h.catalog.ResolveEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			h.writeError(ctx, w, http.StatusNotFound, "not_found")
			return
		}
		h.loggerFromContext(ctx).Error("failed to resolve event", "event_id", eventID, "error", err)
		h.writeError(ctx, w, http.StatusBadGateway, "catalog_unavailable")
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, event)
}

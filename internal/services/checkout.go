package services

import (
	"context"
	"log/slog"

	"github.com/confpayapp/confpay/internal/catalog"
	"github.com/confpayapp/confpay/internal/logging"
	"github.com/confpayapp/confpay/internal/payment"
)

type remoteConfigSource interface {
	PublishableKey(ctx context.Context) string
	RedirectURL(ctx context.Context) string
}

// CheckoutDetails is everything the checkout view needs to render.
type CheckoutDetails struct {
	Event            catalog.Event
	Amount           float64
	AmountMinorUnits int64
	PublishableKey   string
	RedirectURL      string
}

// CheckoutService assembles validated checkout view data for an event,
// applying the caller's optional price override.
type CheckoutService struct {
	events  eventResolver
	amounts *payment.AmountResolver
	keys    remoteConfigSource
	logger  *slog.Logger
}

func NewCheckoutService(events eventResolver, amounts *payment.AmountResolver, keys remoteConfigSource, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		events:  events,
		amounts: amounts,
		keys:    keys,
		logger:  logger,
	}
}

// Prepare resolves the event and the effective charge amount. Amount
// validation errors (payment.ErrInvalidAmount, payment.ErrOutOfRange) and
// catalog.ErrEventNotFound pass through for the handler to classify.
func (s *CheckoutService) Prepare(ctx context.Context, eventID, override string) (*CheckoutDetails, error) {
	logger := logging.FromContext(ctx, s.logger)

	event, err := s.events.ResolveEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	amount, err := s.amounts.Resolve(event, override)
	if err != nil {
		logger.Info("checkout amount rejected", "event_id", eventID, "override", override, "error", err)
		return nil, err
	}

	return &CheckoutDetails{
		Event:            *event,
		Amount:           amount,
		AmountMinorUnits: payment.MinorUnits(amount),
		PublishableKey:   s.keys.PublishableKey(ctx),
		RedirectURL:      s.keys.RedirectURL(ctx),
	}, nil
}

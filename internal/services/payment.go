package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/confpayapp/confpay/internal/catalog"
	"github.com/confpayapp/confpay/internal/logging"
	"github.com/confpayapp/confpay/internal/payment"
	"github.com/confpayapp/confpay/internal/processor"
)

// Charges below this minor-unit amount are rejected locally; the processor
// enforces the same floor.
const minChargeMinorUnits = 50

// PaymentRequest is one checkout attempt. It is transient and never
// persisted.
type PaymentRequest struct {
	Token            string `json:"token" validate:"required"`
	EventID          string `json:"eventId" validate:"required"`
	CustomerName     string `json:"customerName" validate:"required"`
	CustomerEmail    string `json:"customerEmail" validate:"required,email"`
	CustomerPhone    string `json:"customerPhone" validate:"required"`
	AmountMinorUnits int64  `json:"amountMinorUnits" validate:"required"`
}

// ChargeResult is the normalized outcome reported back to the caller.
type ChargeResult struct {
	Success       bool   `json:"success"`
	ChargeID      string `json:"chargeId,omitempty"`
	ReceiptURL    string `json:"receiptUrl,omitempty"`
	ErrorCategory string `json:"errorCategory,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

type eventResolver interface {
	ResolveEvent(ctx context.Context, eventID string) (*catalog.Event, error)
}

// PaymentService validates payment requests and submits charges to the
// external processor.
type PaymentService struct {
	events              eventResolver
	processor           processor.Client
	currency            string
	statementDescriptor string
	validate            *validator.Validate
	now                 func() time.Time
	logger              *slog.Logger
}

func NewPaymentService(events eventResolver, processorClient processor.Client, currency, statementDescriptor string, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		events:              events,
		processor:           processorClient,
		currency:            currency,
		statementDescriptor: statementDescriptor,
		validate:            validator.New(),
		now:                 time.Now,
		logger:              logger,
	}
}

func (s *PaymentService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// SubmitCharge runs the full charge pipeline: local precondition checks, a
// defensive re-resolution of the event, one charge creation, and outcome
// classification. Validation and processor failures are normalized into the
// result; only a catalog fetch or parse failure is returned as an error.
func (s *PaymentService) SubmitCharge(ctx context.Context, req PaymentRequest) (*ChargeResult, error) {
	logger := s.loggerFromContext(ctx)

	if err := s.validate.Struct(req); err != nil {
		logger.Info("payment request rejected", "category", payment.CategoryMissingFields, "error", err)
		return &ChargeResult{
			Success:       false,
			ErrorCategory: string(payment.CategoryMissingFields),
			ErrorMessage:  "payment request is incomplete",
		}, nil
	}

	if req.AmountMinorUnits < minChargeMinorUnits {
		logger.Info("payment request rejected", "category", payment.CategoryAmountTooSmall, "amount_minor_units", req.AmountMinorUnits)
		return &ChargeResult{
			Success:       false,
			ErrorCategory: string(payment.CategoryAmountTooSmall),
			ErrorMessage:  fmt.Sprintf("amount must be at least %d minor units", minChargeMinorUnits),
		}, nil
	}

	// Re-resolve the event so a stale or forged identifier never reaches
	// the processor.
	event, err := s.events.ResolveEvent(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			logger.Info("payment request rejected", "category", payment.CategoryEventNotFound, "event_id", req.EventID)
			return &ChargeResult{
				Success:       false,
				ErrorCategory: string(payment.CategoryEventNotFound),
				ErrorMessage:  "event not found",
			}, nil
		}
		return nil, fmt.Errorf("failed to resolve event %s: %w", req.EventID, err)
	}

	charge, err := s.processor.CreateCharge(ctx, processor.ChargeParams{
		AmountMinorUnits:    req.AmountMinorUnits,
		Currency:            s.currency,
		Description:         fmt.Sprintf("Registration for %s", event.Name),
		Token:               req.Token,
		ReceiptEmail:        req.CustomerEmail,
		StatementDescriptor: s.statementDescriptor,
		Metadata: map[string]string{
			"eventId":       event.ID,
			"eventName":     event.Name,
			"customerName":  req.CustomerName,
			"customerEmail": req.CustomerEmail,
			"customerPhone": req.CustomerPhone,
			"processedAt":   s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		category, message := payment.ClassifyProcessorError(err)
		logger.Error("charge failed", "category", category, "event_id", event.ID, "error", err)
		return &ChargeResult{
			Success:       false,
			ErrorCategory: string(category),
			ErrorMessage:  message,
		}, nil
	}

	if charge.Status != processor.StatusSucceeded {
		logger.Warn("charge not succeeded", "status", charge.Status, "charge_id", charge.ID, "event_id", event.ID)
		return &ChargeResult{
			Success:       false,
			ErrorCategory: string(payment.CategoryProcessorDeclined),
			ErrorMessage:  "payment was declined",
		}, nil
	}

	logger.Info("charge succeeded", "charge_id", charge.ID, "event_id", event.ID, "amount_minor_units", req.AmountMinorUnits)
	return &ChargeResult{
		Success:    true,
		ChargeID:   charge.ID,
		ReceiptURL: charge.ReceiptURL,
	}, nil
}

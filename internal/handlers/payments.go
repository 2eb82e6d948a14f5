package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/confpayapp/confpay/internal/observability"
	"github.com/confpayapp/confpay/internal/payment"
	"github.com/confpayapp/confpay/internal/services"
)

// ProcessPayment accepts a JSON PaymentRequest and submits the charge. The
// response body is always a ChargeResult; the status code reflects the
// normalized failure category.
func (h *Handlers) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	var req services.PaymentRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		logger.Info("rejecting undecodable payment request", "error", err)
		h.writeJSON(ctx, w, http.StatusBadRequest, services.ChargeResult{
			Success:       false,
			ErrorCategory: string(payment.CategoryMissingFields),
			ErrorMessage:  "payment request is incomplete",
		})
		return
	}

	result, err := h.payments.SubmitCharge(ctx, req)
	if err != nil {
		logger.Error("payment pipeline failed", "error", err)
		h.writeJSON(ctx, w, http.StatusBadGateway, services.ChargeResult{
			Success:       false,
			ErrorCategory: string(payment.CategoryServiceUnavailable),
			ErrorMessage:  "service temporarily unavailable",
		})
		return
	}

	meter := observability.MeterFromContext(ctx)
	meter.Count("payments.submitted", 1, sentry.WithAttributes(
		attribute.String("payment.success", strconv.FormatBool(result.Success)),
		attribute.String("payment.error_category", result.ErrorCategory),
	))

	h.writeJSON(ctx, w, statusForResult(result), result)
}

func statusForResult(result *services.ChargeResult) int {
	if result.Success {
		return http.StatusOK
	}

	switch payment.ErrorCategory(result.ErrorCategory) {
	case payment.CategoryMissingFields, payment.CategoryAmountTooSmall, payment.CategoryInvalidRequest:
		return http.StatusBadRequest
	case payment.CategoryEventNotFound:
		return http.StatusNotFound
	case payment.CategoryCardError, payment.CategoryProcessorDeclined:
		return http.StatusPaymentRequired
	case payment.CategoryServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

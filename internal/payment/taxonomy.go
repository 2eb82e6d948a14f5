package payment

import (
	"errors"

	"github.com/confpayapp/confpay/internal/processor"
)

// ErrorCategory is a stable, user-facing failure category.
type ErrorCategory string

const (
	CategoryCardError          ErrorCategory = "CardError"
	CategoryInvalidRequest     ErrorCategory = "InvalidRequest"
	CategoryServiceUnavailable ErrorCategory = "ServiceUnavailable"
	CategoryProcessorDeclined  ErrorCategory = "ProcessorDeclined"
	CategoryUnknown            ErrorCategory = "Unknown"

	CategoryMissingFields  ErrorCategory = "MissingFields"
	CategoryAmountTooSmall ErrorCategory = "AmountTooSmall"
	CategoryEventNotFound  ErrorCategory = "EventNotFound"
)

const (
	msgInvalidRequest     = "invalid payment information"
	msgServiceUnavailable = "service temporarily unavailable"
	msgUnknown            = "payment failed, please try again"
)

// ClassifyProcessorError maps a processor failure to a category and a
// user-safe message. Card-level messages pass through untouched since the
// processor already phrases them for end users; every other kind gets a
// generic message so internal detail never leaks.
func ClassifyProcessorError(err error) (ErrorCategory, string) {
	var procErr *processor.Error
	if !errors.As(err, &procErr) {
		return CategoryUnknown, msgUnknown
	}

	switch procErr.Kind {
	case processor.KindCard:
		return CategoryCardError, procErr.Message
	case processor.KindInvalidRequest:
		return CategoryInvalidRequest, msgInvalidRequest
	case processor.KindUnavailable:
		return CategoryServiceUnavailable, msgServiceUnavailable
	default:
		return CategoryUnknown, msgUnknown
	}
}

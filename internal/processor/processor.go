// Package processor abstracts the external payment-charging service.
package processor

import "context"

// ErrorKind classifies a processor failure independently of the concrete
// processor SDK.
type ErrorKind string

const (
	KindCard           ErrorKind = "card"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindUnavailable    ErrorKind = "unavailable"
	KindUnknown        ErrorKind = "unknown"
)

// Error is a normalized processor failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// ChargeParams carries everything needed for one charge creation.
type ChargeParams struct {
	AmountMinorUnits    int64
	Currency            string
	Description         string
	Token               string
	ReceiptEmail        string
	StatementDescriptor string
	Metadata            map[string]string
}

// Charge is the processor's view of a submitted charge.
type Charge struct {
	ID         string
	Status     string
	ReceiptURL string
}

// StatusSucceeded is the only charge status treated as success.
const StatusSucceeded = "succeeded"

// Client creates charges against the external processor.
type Client interface {
	CreateCharge(ctx context.Context, params ChargeParams) (*Charge, error)
}

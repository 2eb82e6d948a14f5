// Package payment validates charge amounts and maps processor failures to a
// stable, user-safe error taxonomy.
package payment

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/confpayapp/confpay/internal/catalog"
)

// Override amounts must fall inside this inclusive range, in whole currency
// units.
const (
	MinOverrideAmount = 1
	MaxOverrideAmount = 10000
)

var (
	// ErrInvalidAmount marks an override that is not a positive finite number.
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrOutOfRange marks a parseable override outside the accepted range.
	ErrOutOfRange = errors.New("amount must be between 1 and 10000")
)

type AmountResolver struct{}

func NewAmountResolver() *AmountResolver {
	return &AmountResolver{}
}

// Resolve produces the effective charge amount for an event. An empty
// override yields the catalog price, trusted as-is. A supplied override is
// parsed first (ErrInvalidAmount) and range-checked second (ErrOutOfRange) so
// malformed input is distinguishable from merely out-of-bounds input.
func (r *AmountResolver) Resolve(event *catalog.Event, override string) (float64, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return event.Cost, nil
	}

	amount, err := strconv.ParseFloat(override, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}

	if amount < MinOverrideAmount || amount > MaxOverrideAmount {
		return 0, ErrOutOfRange
	}

	return amount, nil
}

// MinorUnits converts a decimal amount in major currency units to the
// processor's integral minor units.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

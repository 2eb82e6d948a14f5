package processor

import (
	"context"
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v84"
)

// StripeClient submits charges to Stripe.
type StripeClient struct {
	client *stripeapi.Client
}

func NewStripeClient(secretKey string) (*StripeClient, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	return &StripeClient{
		client: stripeapi.NewClient(secretKey),
	}, nil
}

func (c *StripeClient) CreateCharge(ctx context.Context, params ChargeParams) (*Charge, error) {
	chargeParams := &stripeapi.ChargeCreateParams{
		Amount:       stripeapi.Int64(params.AmountMinorUnits),
		Currency:     stripeapi.String(params.Currency),
		Description:  stripeapi.String(params.Description),
		ReceiptEmail: stripeapi.String(params.ReceiptEmail),
		Source: &stripeapi.PaymentSourceSourceParams{
			Token: stripeapi.String(params.Token),
		},
	}
	if params.StatementDescriptor != "" {
		chargeParams.StatementDescriptor = stripeapi.String(params.StatementDescriptor)
	}
	for key, value := range params.Metadata {
		chargeParams.AddMetadata(key, value)
	}

	charge, err := c.client.V1Charges.Create(ctx, chargeParams)
	if err != nil {
		return nil, normalizeStripeError(err)
	}

	return &Charge{
		ID:         charge.ID,
		Status:     string(charge.Status),
		ReceiptURL: charge.ReceiptURL,
	}, nil
}

// normalizeStripeError converts Stripe SDK failures into the
// processor-agnostic Error type.
func normalizeStripeError(err error) *Error {
	var stripeErr *stripeapi.Error
	if !errors.As(err, &stripeErr) {
		return &Error{Kind: KindUnknown, Message: err.Error()}
	}

	switch stripeErr.Type {
	case stripeapi.ErrorTypeCard:
		return &Error{Kind: KindCard, Message: stripeErr.Msg}
	case stripeapi.ErrorTypeInvalidRequest:
		return &Error{Kind: KindInvalidRequest, Message: stripeErr.Msg}
	case stripeapi.ErrorTypeAPI:
		return &Error{Kind: KindUnavailable, Message: stripeErr.Msg}
	default:
		return &Error{Kind: KindUnknown, Message: stripeErr.Msg}
	}
}

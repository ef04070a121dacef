// Package payment adapts the Stripe API to the payment-sheet flow.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/ephemeralkey"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// ErrNotConfigured is returned when no Stripe secret key is set.
var ErrNotConfigured = errors.New("payment processor not configured")

// IntentRequest describes a card payment in minor units.
type IntentRequest struct {
	CustomerID  string
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
}

// Intent is the client-usable result of creating a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
}

// Processor is the subset of Stripe used by the service.
type Processor interface {
	CreateCustomer(ctx context.Context, userID, email, name string) (string, error)
	CreateEphemeralKey(ctx context.Context, customerID string) (string, error)
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

type stripeProcessor struct {
	apiVersion string
}

// NewStripeProcessor configures the global Stripe key. apiVersion is sent
// with ephemeral keys so mobile SDKs can read them.
func NewStripeProcessor(secretKey, apiVersion string) Processor {
	stripe.Key = secretKey
	return &stripeProcessor{apiVersion: apiVersion}
}

func (p *stripeProcessor) CreateCustomer(ctx context.Context, userID, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer creation failed: %w", err)
	}
	return cust.ID, nil
}

func (p *stripeProcessor) CreateEphemeralKey(ctx context.Context, customerID string) (string, error) {
	params := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(customerID),
		StripeVersion: stripe.String(p.apiVersion),
	}
	params.Context = ctx

	key, err := ephemeralkey.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe ephemeral key creation failed: %w", err)
	}
	return key.Secret, nil
}

func (p *stripeProcessor) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	currency := req.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(currency),
		Customer:           stripe.String(req.CustomerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Metadata:           req.Metadata,
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent creation failed: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// disabledProcessor is used when STRIPE_SECRET_KEY is empty.
type disabledProcessor struct{}

// NewDisabledProcessor returns a Processor that always fails with ErrNotConfigured.
func NewDisabledProcessor() Processor {
	return disabledProcessor{}
}

func (disabledProcessor) CreateCustomer(context.Context, string, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (disabledProcessor) CreateEphemeralKey(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (disabledProcessor) CreatePaymentIntent(context.Context, IntentRequest) (*Intent, error) {
	return nil, ErrNotConfigured
}

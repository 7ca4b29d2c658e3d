package provider

import (
	"context"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

// Intent is the subset of a provider payment intent the workflows need.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

// Refund is the provider-side refund outcome.
type Refund struct {
	ID     string
	Status string
	Amount int64
}

// Provider abstracts the card-payment processor so services can be
// tested without network calls.
type Provider interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	Refund(ctx context.Context, paymentIntentID string) (*Refund, error)
}

type stripeProvider struct{}

// NewStripeProvider configures the global Stripe client with the given
// secret key and returns a Provider backed by it.
func NewStripeProvider(secretKey string) Provider {
	stripe.Key = secretKey
	return &stripeProvider{}
}

func (p *stripeProvider) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
	}, nil
}

func (p *stripeProvider) Refund(ctx context.Context, paymentIntentID string) (*Refund, error) {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(paymentIntentID),
	}

	ref, err := refund.New(params)
	if err != nil {
		return nil, err
	}

	return &Refund{
		ID:     ref.ID,
		Status: string(ref.Status),
		Amount: ref.Amount,
	}, nil
}

// Package payment starts subscription checkouts with Stripe.
package payment

import (
	"context"
	"errors"
	"fitbuddy/app/internal/config"
	"log"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrNotConfigured is returned when no Stripe key or price is configured.
var ErrNotConfigured = errors.New("payments are not configured")

// CheckoutSession is what the browser needs to redirect to Stripe.
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// CheckoutProvider creates hosted checkout sessions.
type CheckoutProvider interface {
	CreateSubscriptionCheckout(ctx context.Context, customerEmail, clientReferenceID string) (*CheckoutSession, error)
}

type stripeCheckout struct {
	api        *client.API
	priceID    string
	successURL string
	cancelURL  string
}

// NewStripeCheckout builds a checkout provider for the configured price.
func NewStripeCheckout(cfg config.StripeConfig) (CheckoutProvider, error) {
	if cfg.SecretKey == "" || cfg.PriceID == "" {
		return nil, ErrNotConfigured
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &stripeCheckout{
		api:        api,
		priceID:    cfg.PriceID,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}, nil
}

// CreateSubscriptionCheckout opens a card-only subscription checkout for one seat.
func (s *stripeCheckout) CreateSubscriptionCheckout(ctx context.Context, customerEmail, clientReferenceID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(clientReferenceID),
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		log.Printf("ERROR: Stripe checkout session for %s failed: %v", clientReferenceID, err)
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// Disabled is a CheckoutProvider that always reports ErrNotConfigured.
type Disabled struct{}

func (Disabled) CreateSubscriptionCheckout(context.Context, string, string) (*CheckoutSession, error) {
	return nil, ErrNotConfigured
}

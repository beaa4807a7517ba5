package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/tienda/pkg/config"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// PaymentSheet carries what the mobile payment sheet needs to present a charge.
type PaymentSheet struct {
	PaymentIntent  string `json:"paymentIntent"`
	EphemeralKey   string `json:"ephemeralKey"`
	Customer       string `json:"customer"`
	PublishableKey string `json:"publishableKey"`
}

type StripeProvider struct {
	api    *client.API
	cfg    config.StripeConfig
	logger *zap.Logger
}

func NewStripeProvider(cfg config.StripeConfig, logger *zap.Logger) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: stripe secret key is empty", ErrNotConfigured)
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeProvider{api: api, cfg: cfg, logger: logger}, nil
}

// PaymentSheet creates a customer, an ephemeral key for it and a payment
// intent for amount.
func (p *StripeProvider) PaymentSheet(ctx context.Context, amount float64) (*PaymentSheet, error) {
	cents, err := MinorUnits(amount)
	if err != nil {
		return nil, err
	}

	customerParams := &stripe.CustomerParams{}
	customerParams.Context = ctx
	customer, err := p.api.Customers.New(customerParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe customer: %w", err)
	}

	keyParams := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(customer.ID),
		StripeVersion: stripe.String(p.cfg.APIVersion),
	}
	keyParams.Context = ctx
	key, err := p.api.EphemeralKeys.New(keyParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe ephemeral key: %w", err)
	}

	intentParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(strings.ToLower(p.cfg.Currency)),
		Customer: stripe.String(customer.ID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	intentParams.Context = ctx
	intent, err := p.api.PaymentIntents.New(intentParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create stripe payment intent: %w", err)
	}

	p.logger.Info("Payment intent created",
		zap.String("customer", customer.ID),
		zap.String("intent", intent.ID),
		zap.Int64("amount", cents))

	return &PaymentSheet{
		PaymentIntent:  intent.ClientSecret,
		EphemeralKey:   key.Secret,
		Customer:       customer.ID,
		PublishableKey: p.cfg.PublishableKey,
	}, nil
}

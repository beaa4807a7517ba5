package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/example/tienda/pkg/config"
	"github.com/plutov/paypal/v4"
	"go.uber.org/zap"
)

type PayPalProvider struct {
	mu       sync.Mutex
	client   *paypal.Client
	currency string
	logger   *zap.Logger
}

func NewPayPalProvider(cfg config.PayPalConfig, logger *zap.Logger) (*PayPalProvider, error) {
	if cfg.ClientID == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("%w: paypal credentials are empty", ErrNotConfigured)
	}

	base := paypal.APIBaseLive
	if cfg.Sandbox {
		base = paypal.APIBaseSandBox
	}
	c, err := paypal.NewClient(cfg.ClientID, cfg.Secret, base)
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal client: %w", err)
	}

	return &PayPalProvider{
		client:   c,
		currency: strings.ToUpper(cfg.Currency),
		logger:   logger,
	}, nil
}

// CreateOrder opens a CAPTURE order for amount and returns its id.
func (p *PayPalProvider) CreateOrder(ctx context.Context, amount float64) (string, error) {
	value, err := MajorUnits(amount)
	if err != nil {
		return "", err
	}

	if err := p.ensureToken(ctx); err != nil {
		return "", err
	}

	order, err := p.client.CreateOrder(ctx, paypal.OrderIntentCapture, []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: p.currency,
				Value:    value,
			},
		},
	}, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create paypal order: %w", err)
	}

	p.logger.Info("PayPal order created", zap.String("order_id", order.ID), zap.String("amount", value))
	return order.ID, nil
}

func (p *PayPalProvider) ensureToken(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client.Token != nil {
		return nil
	}
	if _, err := p.client.GetAccessToken(ctx); err != nil {
		return fmt.Errorf("failed to get paypal access token: %w", err)
	}
	return nil
}

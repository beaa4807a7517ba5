package payment

import (
	"context"
	"testing"

	"github.com/example/tienda/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{amount: 100, want: 10000},
		{amount: 19.99, want: 1999},
		{amount: 0.1 + 0.2, want: 30},
		{amount: 0.005, want: 1},
	}
	for _, tt := range tests {
		got, err := MinorUnits(tt.amount)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "amount %v", tt.amount)
	}
}

func TestRejectsNonPositiveAmounts(t *testing.T) {
	for _, amount := range []float64{0, -1, -0.01} {
		_, err := MinorUnits(amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = MajorUnits(amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestMajorUnits(t *testing.T) {
	v, err := MajorUnits(250)
	require.NoError(t, err)
	assert.Equal(t, "250.00", v)
}

func TestProvidersRequireCredentials(t *testing.T) {
	_, err := NewStripeProvider(config.StripeConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewPayPalProvider(config.PayPalConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripeValidatesBeforeCalling(t *testing.T) {
	p, err := NewStripeProvider(config.StripeConfig{SecretKey: "sk_test_x", Currency: "mxn"}, zap.NewNop())
	require.NoError(t, err)

	_, err = p.PaymentSheet(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

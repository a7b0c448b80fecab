package provider

import (
	"fmt"

	"github.com/wekeepgrowing/vipgate/internal/config"
	"github.com/wekeepgrowing/vipgate/internal/domain/provider"
	stripeProvider "github.com/wekeepgrowing/vipgate/internal/infrastructure/provider/stripe"
	"go.uber.org/zap"
)

const ProviderTypeStripe = "stripe"

// Factory creates payment providers based on the provider type
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// GetProvider returns a payment provider by name; an empty name selects Stripe.
func (f *Factory) GetProvider(providerType string) (provider.PaymentProvider, error) {
	switch providerType {
	case "", ProviderTypeStripe:
		return f.createStripeProvider()
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

// createStripeProvider creates a new Stripe provider instance
func (f *Factory) createStripeProvider() (provider.PaymentProvider, error) {
	cfg := f.config.Stripe
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("Stripe secret key not configured")
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("Stripe webhook secret not configured")
	}

	return stripeProvider.NewStripeProvider(stripeProvider.Config{
		SecretKey:         cfg.SecretKey,
		WebhookSecret:     cfg.WebhookSecret,
		APIURL:            cfg.APIURL,
		MaxNetworkRetries: cfg.MaxNetworkRetries,
	}, f.logger), nil
}

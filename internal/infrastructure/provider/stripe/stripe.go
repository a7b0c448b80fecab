package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/domain/provider"
	"go.uber.org/zap"
)

const providerName = "stripe"

// Config configures the Stripe client.
type Config struct {
	SecretKey     string
	WebhookSecret string
	// APIURL overrides the API base URL, e.g. for stripe-mock.
	APIURL            string
	MaxNetworkRetries int64
	HTTPClient        *http.Client
}

// StripeProvider implements the PaymentProvider interface for Stripe
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeProvider creates a new Stripe provider
func NewStripeProvider(cfg Config, logger *zap.Logger) *StripeProvider {
	backendConfig := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
		LeveledLogger:     logger.Named("stripe").Sugar(),
	}
	if cfg.APIURL != "" {
		backendConfig.URL = stripe.String(cfg.APIURL)
	}
	if cfg.HTTPClient != nil {
		backendConfig.HTTPClient = cfg.HTTPClient
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, stripe.NewBackendsWithConfig(backendConfig))

	return &StripeProvider{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}
}

// GetProviderName returns the provider name
func (s *StripeProvider) GetProviderName() string {
	return providerName
}

func (s *StripeProvider) CreateProduct(ctx context.Context, req *provider.CreateProductRequest) (string, error) {
	params := &stripe.ProductParams{
		Name: stripe.String(req.Name),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx

	product, err := s.api.Products.New(params)
	if err != nil {
		s.logger.Error("Failed to create Stripe product",
			zap.String("name", req.Name),
			zap.Error(err))
		return "", toProviderError(err)
	}

	s.logger.Info("Stripe product created",
		zap.String("product_id", product.ID),
		zap.String("name", req.Name))
	return product.ID, nil
}

func (s *StripeProvider) CreatePrice(ctx context.Context, req *provider.CreatePriceRequest) (string, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(req.ProductID),
		UnitAmount: stripe.Int64(req.UnitAmount),
		Currency:   stripe.String(req.Currency),
	}
	if req.RecurringInterval != "" {
		params.Recurring = &stripe.PriceRecurringParams{
			Interval: stripe.String(req.RecurringInterval),
		}
	}
	params.Context = ctx

	price, err := s.api.Prices.New(params)
	if err != nil {
		s.logger.Error("Failed to create Stripe price",
			zap.String("product_id", req.ProductID),
			zap.Int64("unit_amount", req.UnitAmount),
			zap.Error(err))
		return "", toProviderError(err)
	}

	s.logger.Info("Stripe price created",
		zap.String("price_id", price.ID),
		zap.String("product_id", req.ProductID),
		zap.Int64("unit_amount", req.UnitAmount),
		zap.Bool("recurring", req.RecurringInterval != ""))
	return price.ID, nil
}

func (s *StripeProvider) CreateCustomer(ctx context.Context, req *provider.CreateCustomerRequest) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
	}
	if req.Name != "" {
		params.Name = stripe.String(req.Name)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	customer, err := s.api.Customers.New(params)
	if err != nil {
		s.logger.Error("Failed to create Stripe customer",
			zap.String("email", req.Email),
			zap.Error(err))
		return "", toProviderError(err)
	}

	s.logger.Info("Stripe customer created",
		zap.String("customer_id", customer.ID),
		zap.String("email", req.Email))
	return customer.ID, nil
}

func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, req *provider.CheckoutSessionRequest) (*provider.CheckoutSession, error) {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(req.CustomerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(quantity),
			},
		},
		Mode:       stripe.String(string(req.Mode)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		s.logger.Error("Failed to create checkout session",
			zap.String("customer_id", req.CustomerID),
			zap.String("price_id", req.PriceID),
			zap.Error(err))
		return nil, toProviderError(err)
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.String("customer_id", req.CustomerID),
		zap.String("mode", string(req.Mode)))
	return &provider.CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event. Event types the
// service does not act on come back as EventTypeUnhandled.
func (s *StripeProvider) ParseWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		s.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrAuthenticityFailure, err)
	}

	result := &provider.WebhookEvent{
		ID:        event.ID,
		Type:      provider.EventTypeUnhandled,
		RawType:   string(event.Type),
		CreatedAt: time.Unix(event.Created, 0).UTC(),
	}
	if event.Data == nil {
		return result, nil
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("%w: checkout session: %v", domainErrors.ErrMalformedEvent, err)
		}
		result.Type = provider.EventTypeCheckoutCompleted
		result.Metadata = session.Metadata
		if session.Customer != nil {
			result.CustomerID = session.Customer.ID
		}

	case stripe.EventTypeInvoicePaid:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("%w: invoice: %v", domainErrors.ErrMalformedEvent, err)
		}
		result.Type = provider.EventTypeInvoicePaid
		if invoice.Customer != nil {
			result.CustomerID = invoice.Customer.ID
		}

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			return nil, fmt.Errorf("%w: subscription: %v", domainErrors.ErrMalformedEvent, err)
		}
		result.Type = provider.EventTypeSubscriptionCanceled
		if subscription.Customer != nil {
			result.CustomerID = subscription.Customer.ID
		}
	}

	return result, nil
}

// toProviderError keeps Stripe's user-facing message so it can be relayed to the initiator.
func toProviderError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		message := stripeErr.Msg
		if message == "" {
			message = string(stripeErr.Type)
		}
		return &provider.ProviderError{
			Code:       string(stripeErr.Code),
			Message:    message,
			Details:    stripeErr.RequestID,
			HTTPStatus: stripeErr.HTTPStatusCode,
		}
	}
	return &provider.ProviderError{
		Code:    "network_error",
		Message: err.Error(),
	}
}

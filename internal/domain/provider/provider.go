package provider

import (
	"context"
	"errors"
	"time"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
)

// PaymentProvider defines the payment provider capabilities the service consumes.
type PaymentProvider interface {
	// CreateProduct registers a product and returns its provider id.
	CreateProduct(ctx context.Context, req *CreateProductRequest) (string, error)

	// CreatePrice registers a one-time or monthly price for a product and returns its id.
	CreatePrice(ctx context.Context, req *CreatePriceRequest) (string, error)

	// CreateCustomer registers a customer and returns its provider id.
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (string, error)

	// CreateCheckoutSession opens a hosted checkout page.
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)

	// ParseWebhook verifies payload against signature and decodes it. Verification failures
	// wrap domain ErrAuthenticityFailure.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

type CreateProductRequest struct {
	Name        string
	Description string
}

// Interval values for recurring prices.
const (
	IntervalMonth = "month"
)

type CreatePriceRequest struct {
	ProductID string
	// UnitAmount is in the currency's minor unit (cents for usd).
	UnitAmount int64
	Currency   string
	// RecurringInterval is empty for one-time prices.
	RecurringInterval string
}

type CreateCustomerRequest struct {
	Email    string
	Name     string
	Metadata map[string]string
}

type CheckoutSessionRequest struct {
	CustomerID string
	PriceID    string
	Quantity   int64
	Mode       entity.CheckoutMode
	SuccessURL string
	CancelURL  string
	// Metadata is returned untouched on the checkout-completed event.
	Metadata map[string]string
}

// CheckoutSession is the handle returned to the buyer.
type CheckoutSession struct {
	ID  string
	URL string
}

// EventType is a provider-neutral classification of webhook events.
type EventType string

const (
	EventTypeCheckoutCompleted    EventType = "checkout_completed"
	EventTypeInvoicePaid          EventType = "invoice_paid"
	EventTypeSubscriptionCanceled EventType = "subscription_canceled"
	EventTypeUnhandled            EventType = "unhandled"
)

// WebhookEvent represents a verified provider webhook event
type WebhookEvent struct {
	ID   string
	Type EventType
	// RawType is the provider's own event type name.
	RawType string
	// CustomerID is the provider customer the event refers to, when present.
	CustomerID string
	// Metadata is the checkout session metadata for checkout events.
	Metadata  map[string]string
	CreatedAt time.Time
}

// ProviderError is a failed provider call. Message is safe to show to the initiating user.
type ProviderError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// AsProviderError extracts a ProviderError from err's chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	"github.com/wekeepgrowing/vipgate/internal/domain/provider"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"go.uber.org/zap"
)

// Checkout session metadata keys read back by the Reconciler.
const (
	MetadataBuyerID    = "buyer_id"
	MetadataOfferingID = "offering_id"
	metadataTelegramID = "telegram_id"
)

type CheckoutConfig struct {
	// PublicBaseURL prefixes the success and cancel redirects.
	PublicBaseURL string
}

// CheckoutService opens provider checkout sessions for buyers.
type CheckoutService struct {
	store    repository.EntitlementStore
	provider provider.PaymentProvider
	config   CheckoutConfig
	logger   *zap.Logger
}

func NewCheckoutService(store repository.EntitlementStore, paymentProvider provider.PaymentProvider, config CheckoutConfig, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		store:    store,
		provider: paymentProvider,
		config:   config,
		logger:   logger,
	}
}

// InitiateCheckout returns a hosted checkout handle for buyer and offeringID. No local order is
// recorded; the buyer and offering ids travel in the session metadata.
// Errors: errors.ErrOfferingNotFound, *provider.ProviderError, or an internal failure.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, buyer entity.Buyer, offeringID int64) (*provider.CheckoutSession, error) {
	offering, err := s.store.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.store.GetOrCreateCustomerMapping(ctx, buyer.ID, s.customerFactory(buyer))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer for buyer %d: %w", buyer.ID, err)
	}

	base := strings.TrimRight(s.config.PublicBaseURL, "/")
	session, err := s.provider.CreateCheckoutSession(ctx, &provider.CheckoutSessionRequest{
		CustomerID: customerID,
		PriceID:    offering.PriceRef,
		Quantity:   1,
		Mode:       offering.CheckoutMode(),
		SuccessURL: base + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  base + "/cancel",
		Metadata: map[string]string{
			MetadataBuyerID:    strconv.FormatInt(buyer.ID, 10),
			MetadataOfferingID: strconv.FormatInt(offering.ID, 10),
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Checkout initiated",
		zap.Int64("buyer_id", buyer.ID),
		zap.Int64("offering_id", offering.ID),
		zap.String("customer_id", customerID),
		zap.String("session_id", session.ID))
	return session, nil
}

// customerFactory creates the provider customer with a synthetic, non-identifying email.
func (s *CheckoutService) customerFactory(buyer entity.Buyer) repository.CustomerFactory {
	return func(ctx context.Context) (*entity.CustomerMapping, error) {
		email := buyer.SyntheticEmail()
		customerID, err := s.provider.CreateCustomer(ctx, &provider.CreateCustomerRequest{
			Email:    email,
			Name:     buyer.DisplayName(),
			Metadata: map[string]string{metadataTelegramID: strconv.FormatInt(buyer.ID, 10)},
		})
		if err != nil {
			return nil, err
		}
		return &entity.CustomerMapping{
			ProviderCustomerID: customerID,
			Email:              email,
		}, nil
	}
}

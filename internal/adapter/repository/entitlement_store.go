package repository

import (
	"context"
	"fmt"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type entitlementStore struct {
	offerings repository.OfferingRepository
	mappings  repository.CustomerMappingRepository
	grants    repository.GrantRepository
	locker    repository.Locker
	logger    *zap.Logger
}

// NewEntitlementStore composes the offering, customer mapping and grant repositories.
// locker serializes customer creation per buyer.
func NewEntitlementStore(db *gorm.DB, locker repository.Locker, logger *zap.Logger) repository.EntitlementStore {
	return &entitlementStore{
		offerings: NewOfferingRepository(db),
		mappings:  NewCustomerMappingRepository(db),
		grants:    NewGrantRepository(db),
		locker:    locker,
		logger:    logger,
	}
}

func (s *entitlementStore) CreateOffering(ctx context.Context, o *entity.Offering) (int64, error) {
	if err := s.offerings.Create(ctx, o); err != nil {
		return 0, err
	}
	return o.ID, nil
}

func (s *entitlementStore) ListOfferings(ctx context.Context) ([]*entity.Offering, error) {
	return s.offerings.List(ctx)
}

func (s *entitlementStore) GetOffering(ctx context.Context, id int64) (*entity.Offering, error) {
	return s.offerings.GetByID(ctx, id)
}

func (s *entitlementStore) DeleteOffering(ctx context.Context, id int64) error {
	return s.offerings.Delete(ctx, id)
}

func customerLockKey(buyerID int64) string {
	return fmt.Sprintf("customer-mapping:%d", buyerID)
}

// GetOrCreateCustomerMapping holds the buyer lock across lookup, factory call and insert.
// If another process still wins the insert, its stored mapping is returned and the customer
// created here is left unused.
func (s *entitlementStore) GetOrCreateCustomerMapping(ctx context.Context, buyerID int64, factory repository.CustomerFactory) (string, error) {
	unlock, err := s.locker.Lock(ctx, customerLockKey(buyerID))
	if err != nil {
		return "", fmt.Errorf("failed to lock buyer %d: %w", buyerID, err)
	}
	defer unlock()

	existing, err := s.mappings.GetByBuyerID(ctx, buyerID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ProviderCustomerID, nil
	}

	mapping, err := factory(ctx)
	if err != nil {
		return "", err
	}
	mapping.BuyerID = buyerID

	created, err := s.mappings.CreateIfAbsent(ctx, mapping)
	if err != nil {
		return "", err
	}
	if created {
		s.logger.Info("Customer mapping created",
			zap.Int64("buyer_id", buyerID),
			zap.String("provider_customer_id", mapping.ProviderCustomerID))
		return mapping.ProviderCustomerID, nil
	}

	stored, err := s.mappings.GetByBuyerID(ctx, buyerID)
	if err != nil {
		return "", err
	}
	if stored == nil {
		return "", fmt.Errorf("customer mapping for buyer %d conflicted but is missing", buyerID)
	}
	s.logger.Warn("Customer mapping created concurrently, discarding new customer",
		zap.Int64("buyer_id", buyerID),
		zap.String("kept", stored.ProviderCustomerID),
		zap.String("discarded", mapping.ProviderCustomerID))
	return stored.ProviderCustomerID, nil
}

func (s *entitlementStore) FindBuyerByExternalCustomerID(ctx context.Context, providerCustomerID string) (int64, error) {
	mapping, err := s.mappings.GetByProviderCustomerID(ctx, providerCustomerID)
	if err != nil {
		return 0, err
	}
	if mapping == nil {
		return 0, domainErrors.ErrCustomerNotFound
	}
	return mapping.BuyerID, nil
}

func (s *entitlementStore) RecordGrant(ctx context.Context, buyerID, offeringID int64) (entity.GrantOutcome, error) {
	created, err := s.grants.CreateIfAbsent(ctx, buyerID, offeringID)
	if err != nil {
		return 0, err
	}
	if !created {
		return entity.GrantAlreadyExists, nil
	}
	return entity.GrantCreated, nil
}

func (s *entitlementStore) ListGrantsForBuyer(ctx context.Context, buyerID int64) ([]*entity.GrantedAccess, error) {
	return s.grants.ListAccessForBuyer(ctx, buyerID)
}

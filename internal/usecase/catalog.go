package usecase

import (
	"context"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"go.uber.org/zap"
)

// CatalogService serves the read side of the store to buyers and administrators.
type CatalogService struct {
	store  repository.EntitlementStore
	logger *zap.Logger
}

func NewCatalogService(store repository.EntitlementStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

func (s *CatalogService) ListOfferings(ctx context.Context) ([]*entity.Offering, error) {
	return s.store.ListOfferings(ctx)
}

func (s *CatalogService) GetOffering(ctx context.Context, id int64) (*entity.Offering, error) {
	return s.store.GetOffering(ctx, id)
}

func (s *CatalogService) ListAccess(ctx context.Context, buyerID int64) ([]*entity.GrantedAccess, error) {
	return s.store.ListGrantsForBuyer(ctx, buyerID)
}

// DeleteOffering removes an offering and every grant on it. The provider product and price
// are left untouched.
func (s *CatalogService) DeleteOffering(ctx context.Context, id int64) error {
	if err := s.store.DeleteOffering(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Offering deleted", zap.Int64("offering_id", id))
	return nil
}

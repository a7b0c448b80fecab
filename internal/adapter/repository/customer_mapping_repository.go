package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	"github.com/wekeepgrowing/vipgate/internal/domain/model"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type customerMappingRepository struct {
	db *gorm.DB
}

func NewCustomerMappingRepository(db *gorm.DB) repository.CustomerMappingRepository {
	return &customerMappingRepository{
		db: db,
	}
}

// modelToEntity converts a model.CustomerMapping to entity.CustomerMapping
func (r *customerMappingRepository) modelToEntity(m *model.CustomerMapping) *entity.CustomerMapping {
	if m == nil {
		return nil
	}
	return &entity.CustomerMapping{
		BuyerID:            m.BuyerID,
		ProviderCustomerID: m.ProviderCustomerID,
		Email:              m.CustomerEmail,
		CreatedAt:          m.CreatedAt,
	}
}

// entityToModel converts an entity.CustomerMapping to model.CustomerMapping
func (r *customerMappingRepository) entityToModel(e *entity.CustomerMapping) *model.CustomerMapping {
	return &model.CustomerMapping{
		BuyerID:            e.BuyerID,
		ProviderCustomerID: e.ProviderCustomerID,
		CustomerEmail:      e.Email,
		CreatedAt:          e.CreatedAt,
	}
}

func (r *customerMappingRepository) GetByBuyerID(ctx context.Context, buyerID int64) (*entity.CustomerMapping, error) {
	var mapping model.CustomerMapping
	err := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer mapping for buyer %d: %w", buyerID, err)
	}
	return r.modelToEntity(&mapping), nil
}

func (r *customerMappingRepository) GetByProviderCustomerID(ctx context.Context, providerCustomerID string) (*entity.CustomerMapping, error) {
	var mapping model.CustomerMapping
	err := r.db.WithContext(ctx).Where("provider_customer_id = ?", providerCustomerID).First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer mapping for %s: %w", providerCustomerID, err)
	}
	return r.modelToEntity(&mapping), nil
}

func (r *customerMappingRepository) CreateIfAbsent(ctx context.Context, mapping *entity.CustomerMapping) (bool, error) {
	m := r.entityToModel(mapping)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create customer mapping: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	mapping.CreatedAt = m.CreatedAt
	return true, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/domain/model"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"gorm.io/gorm"
)

type offeringRepository struct {
	db *gorm.DB
}

func NewOfferingRepository(db *gorm.DB) repository.OfferingRepository {
	return &offeringRepository{
		db: db,
	}
}

func (r *offeringRepository) modelToEntity(m *model.Offering) *entity.Offering {
	if m == nil {
		return nil
	}
	return &entity.Offering{
		ID:           m.ID,
		Name:         m.Name,
		PriceRef:     m.PriceRef,
		Description:  m.Description,
		ResourceLink: m.ResourceLink,
		Recurring:    m.Recurring,
		CreatedAt:    m.CreatedAt,
	}
}

func (r *offeringRepository) entityToModel(e *entity.Offering) *model.Offering {
	return &model.Offering{
		ID:           e.ID,
		Name:         e.Name,
		PriceRef:     e.PriceRef,
		Description:  e.Description,
		ResourceLink: e.ResourceLink,
		Recurring:    e.Recurring,
		CreatedAt:    e.CreatedAt,
	}
}

// Create inserts offering and copies the generated id and timestamp back onto it.
func (r *offeringRepository) Create(ctx context.Context, offering *entity.Offering) error {
	m := r.entityToModel(offering)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create offering: %w", err)
	}
	offering.ID = m.ID
	offering.CreatedAt = m.CreatedAt
	return nil
}

func (r *offeringRepository) List(ctx context.Context) ([]*entity.Offering, error) {
	var rows []model.Offering
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list offerings: %w", err)
	}

	offerings := make([]*entity.Offering, 0, len(rows))
	for i := range rows {
		offerings = append(offerings, r.modelToEntity(&rows[i]))
	}
	return offerings, nil
}

func (r *offeringRepository) GetByID(ctx context.Context, id int64) (*entity.Offering, error) {
	var m model.Offering
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrOfferingNotFound
		}
		return nil, fmt.Errorf("failed to get offering %d: %w", id, err)
	}
	return r.modelToEntity(&m), nil
}

// Delete removes the offering together with the grants that reference it.
func (r *offeringRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("offering_id = ?", id).Delete(&model.Grant{}).Error; err != nil {
			return fmt.Errorf("failed to delete grants of offering %d: %w", id, err)
		}

		result := tx.Where("id = ?", id).Delete(&model.Offering{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete offering %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return domainErrors.ErrOfferingNotFound
		}
		return nil
	})
}

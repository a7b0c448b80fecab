package repository

import (
	"context"
	"fmt"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	"github.com/wekeepgrowing/vipgate/internal/domain/model"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type grantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) repository.GrantRepository {
	return &grantRepository{
		db: db,
	}
}

// CreateIfAbsent relies on the (buyer_id, offering_id) primary key; a second confirmation
// for the same pair inserts nothing.
func (r *grantRepository) CreateIfAbsent(ctx context.Context, buyerID, offeringID int64) (bool, error) {
	grant := &model.Grant{
		BuyerID:    buyerID,
		OfferingID: offeringID,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(grant)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create grant: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *grantRepository) ListAccessForBuyer(ctx context.Context, buyerID int64) ([]*entity.GrantedAccess, error) {
	var rows []model.GrantedAccessRow
	err := r.db.WithContext(ctx).
		Table("grants g").
		Select("o.id AS offering_id, o.name, o.resource_link, g.created_at AS granted_at").
		Joins("JOIN offerings o ON o.id = g.offering_id").
		Where("g.buyer_id = ?", buyerID).
		Order("g.created_at ASC, o.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list grants for buyer %d: %w", buyerID, err)
	}

	access := make([]*entity.GrantedAccess, 0, len(rows))
	for _, row := range rows {
		access = append(access, &entity.GrantedAccess{
			OfferingID:   row.OfferingID,
			Name:         row.Name,
			ResourceLink: row.ResourceLink,
			GrantedAt:    row.GrantedAt,
		})
	}
	return access, nil
}

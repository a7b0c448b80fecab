package repository

import (
	"context"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
)

// CustomerMappingRepository lookups return (nil, nil) when no row matches.
type CustomerMappingRepository interface {
	GetByBuyerID(ctx context.Context, buyerID int64) (*entity.CustomerMapping, error)
	GetByProviderCustomerID(ctx context.Context, providerCustomerID string) (*entity.CustomerMapping, error)
	// CreateIfAbsent inserts mapping unless the buyer already has one; created is false on conflict.
	CreateIfAbsent(ctx context.Context, mapping *entity.CustomerMapping) (created bool, err error)
}

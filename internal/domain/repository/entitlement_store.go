package repository

import (
	"context"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
)

// CustomerFactory creates the provider-side customer for a buyer. The store invokes it only
// when the buyer has no mapping yet.
type CustomerFactory func(ctx context.Context) (*entity.CustomerMapping, error)

// EntitlementStore is the durable record of offerings, customer mappings and grants. Every
// method is an independently atomic unit of work.
type EntitlementStore interface {
	// CreateOffering inserts o and returns the assigned id. Names are not unique.
	CreateOffering(ctx context.Context, o *entity.Offering) (int64, error)

	// ListOfferings returns all committed offerings in insertion order.
	ListOfferings(ctx context.Context) ([]*entity.Offering, error)

	// GetOffering returns errors.ErrOfferingNotFound for unknown ids.
	GetOffering(ctx context.Context, id int64) (*entity.Offering, error)

	// DeleteOffering removes an offering and its grants.
	DeleteOffering(ctx context.Context, id int64) error

	// GetOrCreateCustomerMapping returns the buyer's provider customer id, calling factory
	// at most once per buyer even under concurrent callers.
	GetOrCreateCustomerMapping(ctx context.Context, buyerID int64, factory CustomerFactory) (string, error)

	// FindBuyerByExternalCustomerID returns errors.ErrCustomerNotFound when unmapped.
	FindBuyerByExternalCustomerID(ctx context.Context, providerCustomerID string) (int64, error)

	// RecordGrant inserts the grant. A duplicate reports GrantAlreadyExists, not an error.
	RecordGrant(ctx context.Context, buyerID, offeringID int64) (entity.GrantOutcome, error)

	// ListGrantsForBuyer returns the name and link of every offering the buyer holds.
	ListGrantsForBuyer(ctx context.Context, buyerID int64) ([]*entity.GrantedAccess, error)
}

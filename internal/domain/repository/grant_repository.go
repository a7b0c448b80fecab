package repository

import (
	"context"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
)

type GrantRepository interface {
	// CreateIfAbsent inserts the grant; created is false when (buyer, offering) already exists.
	CreateIfAbsent(ctx context.Context, buyerID, offeringID int64) (created bool, err error)
	ListAccessForBuyer(ctx context.Context, buyerID int64) ([]*entity.GrantedAccess, error)
}

package repository

import (
	"context"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
)

type OfferingRepository interface {
	Create(ctx context.Context, offering *entity.Offering) error
	List(ctx context.Context) ([]*entity.Offering, error)
	GetByID(ctx context.Context, id int64) (*entity.Offering, error)
	Delete(ctx context.Context, id int64) error
}

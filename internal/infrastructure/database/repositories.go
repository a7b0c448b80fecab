package database

import (
	"github.com/wekeepgrowing/vipgate/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Entitlements  domainRepo.EntitlementStore
	PaymentEvents domainRepo.PaymentEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, locker domainRepo.Locker, logger *zap.Logger) *Repositories {
	return &Repositories{
		Entitlements:  repository.NewEntitlementStore(db, locker, logger),
		PaymentEvents: repository.NewPaymentEventRepository(db, logger),
	}
}

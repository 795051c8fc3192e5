package sqlrepository

import (
	"fmt"

	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/gigmile/payments-microservice/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Repositories struct {
	Payment domain.PaymentRepository
}

func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Payment: NewPaymentRepository(db, logger),
	}
}

// Migrate creates or updates the tables backing the repositories.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&persistence.PaymentModel{}); err != nil {
		return fmt.Errorf("failed to auto-migrate schemas: %w", err)
	}
	return nil
}

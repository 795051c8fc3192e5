package sqlrepository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/gigmile/payments-microservice/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GORMPaymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) *GORMPaymentRepository {
	return &GORMPaymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *GORMPaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	if id <= 0 {
		return nil, domain.ErrPaymentNotFound
	}

	var model persistence.PaymentModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		r.logger.Error("failed to query payment", zap.Error(result.Error), zap.Int64("payment_id", id))
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	return model.ToDomain(), nil
}

func (r *GORMPaymentRepository) FindByOrigin(ctx context.Context, origin string) ([]*domain.Payment, error) {
	var models []persistence.PaymentModel

	result := r.db.WithContext(ctx).
		Where("origin = ?", origin).
		Order("id ASC").
		Find(&models)

	if result.Error != nil {
		r.logger.Error("failed to fetch payments by origin",
			zap.Error(result.Error),
			zap.String("origin", origin),
		)
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	payments := make([]*domain.Payment, len(models))
	for i := range models {
		payments[i] = models[i].ToDomain()
	}

	r.logger.Debug("fetched payments by origin",
		zap.String("origin", origin),
		zap.Int("count", len(payments)),
	)

	return payments, nil
}

// Save inserts payments without an id and fully replaces existing rows
// otherwise. The assigned id is written back to payment.
func (r *GORMPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	model := persistence.PaymentModelFromDomain(payment)

	if model.ID == 0 {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			r.logger.Error("failed to create payment", zap.Error(err), zap.String("origin", payment.Origin))
			return fmt.Errorf("database error: %w", err)
		}
		payment.ID = model.ID

		r.logger.Debug("payment created",
			zap.Int64("payment_id", payment.ID),
			zap.String("origin", payment.Origin),
		)
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&persistence.PaymentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"payment_method": model.PaymentMethod,
			"origin":         model.Origin,
			"destination":    model.Destination,
			"amount":         model.Amount,
			"payment_date":   model.PaymentDate,
		})

	if result.Error != nil {
		r.logger.Error("failed to update payment", zap.Error(result.Error), zap.Int64("payment_id", model.ID))
		return fmt.Errorf("database error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// MySQL reports zero affected rows for an update that changes nothing,
		// so only treat the row as gone when it really is.
		var count int64
		if err := r.db.WithContext(ctx).Model(&persistence.PaymentModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			return domain.ErrPaymentNotFound
		}
	}

	r.logger.Debug("payment updated", zap.Int64("payment_id", model.ID))

	return nil
}

// Delete removes a single payment. Losing a race against a concurrent delete
// yields domain.ErrPaymentNotFound.
func (r *GORMPaymentRepository) Delete(ctx context.Context, payment *domain.Payment) error {
	result := r.db.WithContext(ctx).Delete(&persistence.PaymentModel{}, payment.ID)

	if result.Error != nil {
		r.logger.Error("failed to delete payment", zap.Error(result.Error), zap.Int64("payment_id", payment.ID))
		return fmt.Errorf("database error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}

	r.logger.Debug("payment deleted",
		zap.Int64("payment_id", payment.ID),
		zap.String("origin", payment.Origin),
	)

	return nil
}

package persistence

import (
	"time"

	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentModel represents the database schema for payments
type PaymentModel struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	PaymentMethod string          `gorm:"type:varchar(100)"`
	Origin        string          `gorm:"type:varchar(100);not null;index"`
	Destination   string          `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	PaymentDate   *time.Time      `gorm:"type:date"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts database model to domain entity
func (m *PaymentModel) ToDomain() *domain.Payment {
	return &domain.Payment{
		ID:            m.ID,
		PaymentMethod: m.PaymentMethod,
		Origin:        m.Origin,
		Destination:   m.Destination,
		Amount:        m.Amount,
		PaymentDate:   dateFromColumn(m.PaymentDate),
	}
}

// PaymentModelFromDomain converts domain entity to database model
func PaymentModelFromDomain(payment *domain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:            payment.ID,
		PaymentMethod: payment.PaymentMethod,
		Origin:        payment.Origin,
		Destination:   payment.Destination,
		Amount:        payment.Amount,
		PaymentDate:   dateToColumn(payment.PaymentDate),
	}
}

// A payment without a date is stored as NULL.
func dateToColumn(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	d := domain.DateOf(t)
	return &d
}

func dateFromColumn(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return domain.DateOf(*t)
}

package service

import (
	"context"
	"fmt"

	"github.com/gigmile/payments-microservice/internal/domain"
	"go.uber.org/zap"
)

// AuditService turns payment lifecycle events into an audit trail.
type AuditService struct {
	logger *zap.Logger
}

func NewAuditService(logger *zap.Logger) *AuditService {
	return &AuditService{
		logger: logger,
	}
}

// HandlePaymentEvent records a payment created, updated or deleted event.
func (s *AuditService) HandlePaymentEvent(ctx context.Context, event domain.DomainEvent) error {
	paymentEvent, ok := event.(*domain.PaymentEvent)
	if !ok {
		return fmt.Errorf("invalid event type %T", event)
	}

	payload := paymentEvent.Payload

	fields := []zap.Field{
		zap.String("event_id", event.GetEventID()),
		zap.String("event_type", event.GetEventType()),
		zap.Time("occurred_at", event.GetOccurredAt()),
		zap.Int64("payment_id", payload.PaymentID),
		zap.String("origin", payload.Origin),
		zap.String("destination", payload.Destination),
		zap.String("amount", payload.Amount.String()),
		zap.String("payment_date", payload.PaymentDate),
	}
	if payload.ActorID != "" {
		fields = append(fields, zap.String("actor_id", payload.ActorID))
	}
	if payload.ResolvedUserID != "" {
		fields = append(fields, zap.String("resolved_user_id", payload.ResolvedUserID))
	}

	s.logger.Info("payment audit", fields...)

	if event.GetEventType() == domain.EventTypePaymentCreated && payload.ResolvedUserID != "" && payload.ResolvedUserID != payload.Origin {
		s.logger.Warn("payment origin differs from resolved user",
			zap.Int64("payment_id", payload.PaymentID),
			zap.String("origin", payload.Origin),
			zap.String("resolved_user_id", payload.ResolvedUserID),
		)
	}

	return nil
}

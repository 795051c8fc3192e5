package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gigmile/payments-microservice/internal/domain"
	"go.uber.org/zap"
)

type Options struct {
	// DeleteSelection picks the payment removed by a delete without an id.
	DeleteSelection domain.DeleteSelection
	// ResolveOriginUser enables the canonical user lookup on create.
	ResolveOriginUser bool
	// Now is the clock used for payment date validation; time.Now when nil.
	Now func() time.Time
}

type PaymentService struct {
	paymentRepo    domain.PaymentRepository
	users          domain.UserDirectory
	eventPublisher domain.EventPublisher // Optional - can be nil
	opts           Options
	logger         *zap.Logger
}

func NewPaymentService(
	paymentRepo domain.PaymentRepository,
	users domain.UserDirectory,
	eventPublisher domain.EventPublisher,
	opts Options,
	logger *zap.Logger,
) *PaymentService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DeleteSelection == "" {
		opts.DeleteSelection = domain.SelectLatest
	}
	return &PaymentService{
		paymentRepo:    paymentRepo,
		users:          users,
		eventPublisher: eventPublisher,
		opts:           opts,
		logger:         logger,
	}
}

// ListPayments returns every payment originated by userID, after confirming
// with the users service that the user exists.
func (s *PaymentService) ListPayments(ctx context.Context, userID string) ([]*domain.Payment, error) {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		s.logger.Error("user check failed",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	payments, err := s.paymentRepo.FindByOrigin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}

	s.logger.Info("retrieved user payments",
		zap.String("user_id", userID),
		zap.Int("count", len(payments)),
	)

	return payments, nil
}

// CreatePayment validates and stores a new payment. Any id on the input is
// discarded; the store assigns one and it is written back to payment.
func (s *PaymentService) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	if err := payment.ValidateNew(s.opts.Now()); err != nil {
		s.logger.Info("payment rejected",
			zap.String("origin", payment.Origin),
			zap.String("reason", err.Error()),
		)
		return err
	}

	var resolvedUserID string
	if s.opts.ResolveOriginUser {
		userID, err := s.users.ResolveUserID(ctx, payment.Origin)
		if err != nil {
			s.logger.Error("failed to resolve origin user",
				zap.Error(err),
				zap.String("origin", payment.Origin),
			)
			return fmt.Errorf("failed to resolve origin user: %w", err)
		}
		resolvedUserID = userID
	}

	payment.ID = 0
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	s.logger.Info("payment created",
		zap.Int64("payment_id", payment.ID),
		zap.String("origin", payment.Origin),
		zap.String("resolved_user_id", resolvedUserID),
		zap.String("amount", payment.Amount.String()),
	)

	s.publish(domain.NewPaymentEvent(domain.EventTypePaymentCreated, payment, payment.Origin, resolvedUserID))

	return nil
}

// UpdatePayment replaces every mutable field of the payment identified by
// update.ID, provided userID owns it. Creation rules are not reapplied.
func (s *PaymentService) UpdatePayment(ctx context.Context, userID string, update *domain.Payment) error {
	existing, err := s.paymentRepo.FindByID(ctx, update.ID)
	if err != nil {
		return fmt.Errorf("failed to get payment: %w", err)
	}

	if !existing.OwnedBy(userID) {
		s.logger.Warn("payment update denied",
			zap.Int64("payment_id", existing.ID),
			zap.String("user_id", userID),
		)
		return domain.ErrForbidden
	}

	existing.ApplyUpdate(update)

	if err := s.paymentRepo.Save(ctx, existing); err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	s.logger.Info("payment updated",
		zap.Int64("payment_id", existing.ID),
		zap.String("user_id", userID),
	)

	s.publish(domain.NewPaymentEvent(domain.EventTypePaymentUpdated, existing, userID, ""))

	return nil
}

// DeletePayment removes one payment owned by userID. A non-zero paymentID
// targets that payment; otherwise the configured selection policy chooses
// among the user's payments.
func (s *PaymentService) DeletePayment(ctx context.Context, userID string, paymentID int64) error {
	target, err := s.selectForDelete(ctx, userID, paymentID)
	if err != nil {
		return err
	}

	if !target.OwnedBy(userID) {
		s.logger.Warn("payment delete denied",
			zap.Int64("payment_id", target.ID),
			zap.String("user_id", userID),
		)
		return domain.ErrForbidden
	}

	if err := s.paymentRepo.Delete(ctx, target); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	s.logger.Info("payment deleted",
		zap.Int64("payment_id", target.ID),
		zap.String("user_id", userID),
	)

	s.publish(domain.NewPaymentEvent(domain.EventTypePaymentDeleted, target, userID, ""))

	return nil
}

func (s *PaymentService) selectForDelete(ctx context.Context, userID string, paymentID int64) (*domain.Payment, error) {
	if paymentID != 0 {
		payment, err := s.paymentRepo.FindByID(ctx, paymentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get payment: %w", err)
		}
		return payment, nil
	}

	payments, err := s.paymentRepo.FindByOrigin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}

	target, ok := s.opts.DeleteSelection.Pick(payments)
	if !ok {
		s.logger.Info("no payment selected for delete",
			zap.String("user_id", userID),
			zap.Int("count", len(payments)),
			zap.String("policy", string(s.opts.DeleteSelection)),
		)
		return nil, domain.ErrPaymentNotFound
	}

	return target, nil
}

func (s *PaymentService) publish(event *domain.PaymentEvent) {
	if s.eventPublisher == nil {
		return
	}
	go s.publishEvent(event)
}

func (s *PaymentService) publishEvent(event *domain.PaymentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish payment event",
			zap.Error(err),
			zap.String("event_type", event.GetEventType()),
			zap.String("event_id", event.GetEventID()),
		)
		return
	}

	s.logger.Debug("payment event published",
		zap.String("event_type", event.GetEventType()),
		zap.String("event_id", event.GetEventID()),
	)
}

package handler

import (
	"github.com/gigmile/payments-microservice/internal/application/service"
	"github.com/gigmile/payments-microservice/internal/domain"
	sqlrepository "github.com/gigmile/payments-microservice/internal/infrastructure/repository/mysql"
	"go.uber.org/zap"
)

type Handlers struct {
	Payment *PaymentHandler
}

func NewHandlers(
	repos *sqlrepository.Repositories,
	users domain.UserDirectory,
	eventPublisher domain.EventPublisher,
	opts service.Options,
	logger *zap.Logger,
) *Handlers {
	paymentService := service.NewPaymentService(repos.Payment, users, eventPublisher, opts, logger)
	return &Handlers{
		Payment: NewPaymentHandler(paymentService, logger),
	}
}

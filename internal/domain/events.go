package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypePaymentCreated = "payment.created"
	EventTypePaymentUpdated = "payment.updated"
	EventTypePaymentDeleted = "payment.deleted"
)

// PaymentEventTypes lists every event type the service publishes.
var PaymentEventTypes = []string{
	EventTypePaymentCreated,
	EventTypePaymentUpdated,
	EventTypePaymentDeleted,
}

// DomainEvent represents a domain event
type DomainEvent interface {
	GetEventID() string
	GetEventType() string
	GetAggregateID() string
	GetOccurredAt() time.Time
	GetPayload() interface{}
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e BaseEvent) GetEventID() string       { return e.EventID }
func (e BaseEvent) GetEventType() string     { return e.EventType }
func (e BaseEvent) GetAggregateID() string   { return e.AggregateID }
func (e BaseEvent) GetOccurredAt() time.Time { return e.OccurredAt }

// PaymentEvent is shared by every payment lifecycle event.
type PaymentEvent struct {
	BaseEvent
	Payload PaymentEventPayload `json:"payload"`
}

func (e PaymentEvent) GetPayload() interface{} { return e.Payload }

type PaymentEventPayload struct {
	PaymentID      int64           `json:"payment_id"`
	PaymentMethod  string          `json:"payment_method"`
	Origin         string          `json:"origin"`
	Destination    string          `json:"destination"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentDate    string          `json:"payment_date,omitempty"`
	ActorID        string          `json:"actor_id,omitempty"`
	ResolvedUserID string          `json:"resolved_user_id,omitempty"`
}

// NewPaymentEvent snapshots payment into an event of the given type.
func NewPaymentEvent(eventType string, payment *Payment, actorID, resolvedUserID string) *PaymentEvent {
	var paymentDate string
	if !payment.PaymentDate.IsZero() {
		paymentDate = payment.PaymentDate.Format(DateLayout)
	}

	return &PaymentEvent{
		BaseEvent: BaseEvent{
			EventID:     uuid.New().String(),
			EventType:   eventType,
			AggregateID: payment.Origin,
			OccurredAt:  time.Now(),
		},
		Payload: PaymentEventPayload{
			PaymentID:      payment.ID,
			PaymentMethod:  payment.PaymentMethod,
			Origin:         payment.Origin,
			Destination:    payment.Destination,
			Amount:         payment.Amount,
			PaymentDate:    paymentDate,
			ActorID:        actorID,
			ResolvedUserID: resolvedUserID,
		},
	}
}

// EventPublisher interface
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// EventSubscriber interface
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType string, handler EventHandler) error
}

// EventHandler processes events
type EventHandler func(ctx context.Context, event DomainEvent) error

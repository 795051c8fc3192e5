package domain

import "context"

type PaymentRepository interface {
	FindByID(ctx context.Context, id int64) (*Payment, error)
	FindByOrigin(ctx context.Context, origin string) ([]*Payment, error)
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, payment *Payment) error
}

// UserDirectory is the users service as seen from this service.
type UserDirectory interface {
	// UserExists reports whether the users service knows userID.
	UserExists(ctx context.Context, userID string) (bool, error)
	// ResolveUserID maps an account to its canonical user id.
	ResolveUserID(ctx context.Context, account string) (string, error)
}

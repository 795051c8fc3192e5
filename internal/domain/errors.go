package domain

import "errors"

// ValidationError is a client input error tied to a single payment field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation errors
var (
	ErrInvalidDestination = &ValidationError{
		Field:   "destination",
		Message: "The destination field does not meet the validation requirements.",
	}
	ErrInvalidAmount = &ValidationError{
		Field:   "amount",
		Message: "The amount field does not meet the validation requirements.",
	}
	ErrInvalidPaymentDate = &ValidationError{
		Field:   "paymentDate",
		Message: "The payment date field does not meet the validation requirements.",
	}
)

// Domain errors
var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("payment does not belong to user")
	ErrUpstreamFailure    = errors.New("upstream service call failed")
	ErrServiceUnavailable = errors.New("upstream service unavailable")
)

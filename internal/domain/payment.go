package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the sole aggregate of the service.
type Payment struct {
	ID            int64
	PaymentMethod string
	Origin        string
	Destination   string
	Amount        decimal.Decimal
	PaymentDate   time.Time
}

// DateLayout is the wire and event format of a payment date.
const DateLayout = "2006-01-02"

var destinationPattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateNew applies the creation rules in order; the first failing rule wins.
func (p *Payment) ValidateNew(now time.Time) error {
	if !IsValidDestination(p.Destination) {
		return ErrInvalidDestination
	}
	if !IsValidAmount(p.Amount) {
		return ErrInvalidAmount
	}
	if !IsValidPaymentDate(p.PaymentDate, now) {
		return ErrInvalidPaymentDate
	}
	return nil
}

func IsValidDestination(destination string) bool {
	return destinationPattern.MatchString(destination)
}

func IsValidAmount(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}

// IsValidPaymentDate reports whether date falls on today or later, comparing
// calendar days in the service's local zone.
func IsValidPaymentDate(date, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	return !DateOf(date).Before(DateOf(now))
}

// DateOf truncates t to midnight of its calendar day in the local zone.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// OwnedBy reports whether userID is the payment's origin.
func (p *Payment) OwnedBy(userID string) bool {
	return p.Origin == userID
}

// ApplyUpdate replaces every mutable field with the values from src. The ID
// is left untouched.
func (p *Payment) ApplyUpdate(src *Payment) {
	p.PaymentMethod = src.PaymentMethod
	p.Origin = src.Origin
	p.Destination = src.Destination
	p.Amount = src.Amount
	p.PaymentDate = src.PaymentDate
}

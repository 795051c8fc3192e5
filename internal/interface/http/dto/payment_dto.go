package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Date is a calendar date encoded as "YYYY-MM-DD". null and "" decode to the
// zero value.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(domain.DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("paymentDate must be a string in format YYYY-MM-DD")
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.ParseInLocation(domain.DateLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("paymentDate must be in format YYYY-MM-DD")
	}
	d.Time = t
	return nil
}

type PaymentRequest struct {
	ID            int64           `json:"id"`
	PaymentMethod string          `json:"paymentMethod"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   Date            `json:"paymentDate"`
}

func (r *PaymentRequest) ToDomain() *domain.Payment {
	return &domain.Payment{
		ID:            r.ID,
		PaymentMethod: r.PaymentMethod,
		Origin:        r.Origin,
		Destination:   r.Destination,
		Amount:        r.Amount,
		PaymentDate:   r.PaymentDate.Time,
	}
}

type PaymentResponse struct {
	ID            int64           `json:"id"`
	PaymentMethod string          `json:"paymentMethod"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   Date            `json:"paymentDate"`
}

func PaymentResponseFromDomain(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		PaymentMethod: p.PaymentMethod,
		Origin:        p.Origin,
		Destination:   p.Destination,
		Amount:        p.Amount,
		PaymentDate:   Date{Time: p.PaymentDate},
	}
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

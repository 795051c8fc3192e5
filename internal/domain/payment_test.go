package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayment(now time.Time) *Payment {
	return &Payment{
		PaymentMethod: "card",
		Origin:        "ACC001",
		Destination:   "0123456789",
		Amount:        decimal.RequireFromString("150.75"),
		PaymentDate:   DateOf(now),
	}
}

func TestValidateNew_Valid(t *testing.T) {
	now := time.Now()
	assert.NoError(t, validPayment(now).ValidateNew(now))
}

func TestValidateNew_InvalidDestination(t *testing.T) {
	now := time.Now()
	for _, destination := range []string{"", "123", "12345678901", "01234abcde", " 0123456789", "0123456789\n", "٠١٢٣٤٥٦٧٨٩"} {
		p := validPayment(now)
		p.Destination = destination

		err := p.ValidateNew(now)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "destination %q", destination)
		assert.Equal(t, "destination", verr.Field)
	}
}

func TestValidateNew_InvalidAmount(t *testing.T) {
	now := time.Now()
	for _, amount := range []string{"0", "0.00", "-0.01", "-1000"} {
		p := validPayment(now)
		p.Amount = decimal.RequireFromString(amount)

		err := p.ValidateNew(now)

		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %s", amount)
	}
}

func TestValidateNew_PastDate(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)
	for _, date := range []time.Time{
		now.AddDate(0, 0, -1),
		now.AddDate(-1, 0, 0),
		time.Date(2026, 10, 17, 23, 59, 59, 0, time.Local),
		{},
	} {
		p := validPayment(now)
		p.PaymentDate = date

		err := p.ValidateNew(now)

		assert.ErrorIs(t, err, ErrInvalidPaymentDate, "date %s", date)
	}
}

func TestValidateNew_TodayAndFutureAccepted(t *testing.T) {
	now := time.Date(2026, 10, 18, 23, 59, 0, 0, time.Local)
	for _, date := range []time.Time{
		time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local),
		time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.Local),
	} {
		p := validPayment(now)
		p.PaymentDate = date

		assert.NoError(t, p.ValidateNew(now), "date %s", date)
	}
}

func TestValidateNew_FirstFailingRuleWins(t *testing.T) {
	now := time.Now()
	p := &Payment{
		Destination: "bad",
		Amount:      decimal.Zero,
		PaymentDate: now.AddDate(0, 0, -5),
	}
	assert.ErrorIs(t, p.ValidateNew(now), ErrInvalidDestination)

	p.Destination = "9876543210"
	assert.ErrorIs(t, p.ValidateNew(now), ErrInvalidAmount)

	p.Amount = decimal.NewFromInt(1)
	assert.ErrorIs(t, p.ValidateNew(now), ErrInvalidPaymentDate)
}

func TestApplyUpdate_OverwritesAllMutableFields(t *testing.T) {
	existing := &Payment{
		ID:            7,
		PaymentMethod: "cash",
		Origin:        "ACC001",
		Destination:   "1111111111",
		Amount:        decimal.NewFromInt(10),
		PaymentDate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local),
	}
	src := &Payment{
		ID:            99,
		PaymentMethod: "transfer",
		Origin:        "ACC002",
		Destination:   "2222222222",
		Amount:        decimal.RequireFromString("-3.5"),
		PaymentDate:   time.Date(2020, 5, 5, 0, 0, 0, 0, time.Local),
	}

	existing.ApplyUpdate(src)

	assert.Equal(t, int64(7), existing.ID)
	assert.Equal(t, "transfer", existing.PaymentMethod)
	assert.Equal(t, "ACC002", existing.Origin)
	assert.Equal(t, "2222222222", existing.Destination)
	assert.True(t, existing.Amount.Equal(src.Amount))
	assert.Equal(t, src.PaymentDate, existing.PaymentDate)
}

func TestDeleteSelection_Pick(t *testing.T) {
	payments := []*Payment{{ID: 3}, {ID: 9}, {ID: 5}}

	p, ok := SelectSecond.Pick(payments)
	require.True(t, ok)
	assert.Equal(t, int64(9), p.ID)

	p, ok = SelectFirst.Pick(payments)
	require.True(t, ok)
	assert.Equal(t, int64(3), p.ID)

	p, ok = SelectLatest.Pick(payments)
	require.True(t, ok)
	assert.Equal(t, int64(9), p.ID)
}

func TestDeleteSelection_PickNothing(t *testing.T) {
	single := []*Payment{{ID: 1}}

	_, ok := SelectSecond.Pick(single)
	assert.False(t, ok)

	for _, sel := range []DeleteSelection{SelectSecond, SelectFirst, SelectLatest} {
		_, ok := sel.Pick(nil)
		assert.False(t, ok, string(sel))
	}
}

func TestParseDeleteSelection(t *testing.T) {
	sel, err := ParseDeleteSelection(" Second ")
	require.NoError(t, err)
	assert.Equal(t, SelectSecond, sel)

	sel, err = ParseDeleteSelection("")
	require.NoError(t, err)
	assert.Equal(t, SelectLatest, sel)

	_, err = ParseDeleteSelection("random")
	assert.Error(t, err)
}

func TestDateOf_KeepsZero(t *testing.T) {
	assert.True(t, DateOf(time.Time{}).IsZero())

	got := DateOf(time.Date(2026, 10, 18, 23, 59, 0, 0, time.Local))
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local), got)
}

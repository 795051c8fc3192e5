package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gigmile/payments-microservice/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByOrigin(ctx context.Context, origin string) ([]*domain.Payment, error) {
	args := m.Called(ctx, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// MockUserDirectory is a mock implementation of UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserDirectory) ResolveUserID(ctx context.Context, account string) (string, error) {
	args := m.Called(ctx, account)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
	published chan domain.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	args := m.Called(ctx, event)
	m.published <- event
	return args.Error(0)
}

var fixedNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.Local)

func newTestService(repo *MockPaymentRepository, users *MockUserDirectory, opts Options) *PaymentService {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewPaymentService(repo, users, nil, opts, zap.NewNop())
}

func newPayment() *domain.Payment {
	return &domain.Payment{
		PaymentMethod: "card",
		Origin:        "ACC001",
		Destination:   "0123456789",
		Amount:        decimal.RequireFromString("250.00"),
		PaymentDate:   domain.DateOf(fixedNow),
	}
}

func TestListPayments_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	users := new(MockUserDirectory)
	svc := newTestService(repo, users, Options{})

	payments := []*domain.Payment{
		{ID: 1, Origin: "ACC001", Destination: "0123456789", Amount: decimal.NewFromInt(10)},
		{ID: 2, Origin: "ACC001", Destination: "9876543210", Amount: decimal.NewFromInt(20)},
	}
	users.On("UserExists", ctx, "ACC001").Return(true, nil)
	repo.On("FindByOrigin", ctx, "ACC001").Return(payments, nil)

	// Act
	result, err := svc.ListPayments(ctx, "ACC001")

	// Assert
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, int64(1), result[0].ID)
	assert.Equal(t, int64(2), result[1].ID)

	users.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestListPayments_UserNotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	users := new(MockUserDirectory)
	svc := newTestService(repo, users, Options{})

	users.On("UserExists", ctx, "GHOST").Return(false, nil)

	// Act
	result, err := svc.ListPayments(ctx, "GHOST")

	// Assert
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Nil(t, result)
	repo.AssertNotCalled(t, "FindByOrigin", mock.Anything, mock.Anything)
}

func TestListPayments_UpstreamError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	users := new(MockUserDirectory)
	svc := newTestService(repo, users, Options{})

	users.On("UserExists", ctx, "ACC001").Return(false, domain.ErrServiceUnavailable)

	_, err := svc.ListPayments(ctx, "ACC001")

	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	repo.AssertNotCalled(t, "FindByOrigin", mock.Anything, mock.Anything)
}

func TestCreatePayment_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	users := new(MockUserDirectory)
	svc := newTestService(repo, users, Options{ResolveOriginUser: true})

	payment := newPayment()
	payment.ID = 55

	users.On("ResolveUserID", ctx, "ACC001").Return("user-1", nil)
	repo.On("Save", ctx, payment).Run(func(args mock.Arguments) {
		p := args.Get(1).(*domain.Payment)
		assert.Equal(t, int64(0), p.ID, "client supplied id must be discarded")
		p.ID = 101
	}).Return(nil).Once()

	// Act
	err := svc.CreatePayment(ctx, payment)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(101), payment.ID)
	users.AssertExpectations(t)
	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestCreatePayment_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *domain.Payment)
		want   error
		field  string
	}{
		{"short destination", func(p *domain.Payment) { p.Destination = "12345" }, domain.ErrInvalidDestination, "destination"},
		{"letters in destination", func(p *domain.Payment) { p.Destination = "12345abcde" }, domain.ErrInvalidDestination, "destination"},
		{"zero amount", func(p *domain.Payment) { p.Amount = decimal.Zero }, domain.ErrInvalidAmount, "amount"},
		{"negative amount", func(p *domain.Payment) { p.Amount = decimal.NewFromInt(-5) }, domain.ErrInvalidAmount, "amount"},
		{"yesterday", func(p *domain.Payment) { p.PaymentDate = fixedNow.AddDate(0, 0, -1) }, domain.ErrInvalidPaymentDate, "paymentDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := new(MockPaymentRepository)
			users := new(MockUserDirectory)
			svc := newTestService(repo, users, Options{ResolveOriginUser: true})

			payment := newPayment()
			tt.mutate(payment)

			err := svc.CreatePayment(ctx, payment)

			assert.ErrorIs(t, err, tt.want)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			users.AssertNotCalled(t, "ResolveUserID", mock.Anything, mock.Anything)
		})
	}
}

func TestCreatePayment_ResolveFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	users := new(MockUserDirectory)
	svc := newTestService(repo, users, Options{ResolveOriginUser: true})

	users.On("ResolveUserID", ctx, "ACC001").Return("", domain.ErrUpstreamFailure)

	err := svc.CreatePayment(ctx, newPayment())

	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreatePayment_ResolutionDisabled(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	users := new(MockUserDirectory)
	svc := newTestService(repo, users, Options{ResolveOriginUser: false})

	repo.On("Save", ctx, mock.AnythingOfType("*domain.Payment")).Return(nil)

	err := svc.CreatePayment(ctx, newPayment())

	require.NoError(t, err)
	users.AssertNotCalled(t, "ResolveUserID", mock.Anything, mock.Anything)
}

func TestCreatePayment_PublishesResolvedUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	users := new(MockUserDirectory)
	publisher := &MockEventPublisher{published: make(chan domain.DomainEvent, 1)}
	svc := NewPaymentService(repo, users, publisher, Options{
		ResolveOriginUser: true,
		Now:               func() time.Time { return fixedNow },
	}, zap.NewNop())

	users.On("ResolveUserID", ctx, "ACC001").Return("user-9", nil)
	repo.On("Save", ctx, mock.AnythingOfType("*domain.Payment")).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.CreatePayment(ctx, newPayment()))

	select {
	case event := <-publisher.published:
		paymentEvent, ok := event.(*domain.PaymentEvent)
		require.True(t, ok)
		assert.Equal(t, domain.EventTypePaymentCreated, paymentEvent.EventType)
		assert.Equal(t, "user-9", paymentEvent.Payload.ResolvedUserID)
		assert.Equal(t, "ACC001", paymentEvent.AggregateID)
	case <-time.After(2 * time.Second):
		t.Fatal("payment created event was not published")
	}
}

func TestUpdatePayment_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{})

	repo.On("FindByID", ctx, int64(404)).Return(nil, domain.ErrPaymentNotFound)

	update := newPayment()
	update.ID = 404
	err := svc.UpdatePayment(ctx, "ACC001", update)

	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdatePayment_Forbidden(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{})

	existing := newPayment()
	existing.ID = 3
	repo.On("FindByID", ctx, int64(3)).Return(existing, nil)

	update := newPayment()
	update.ID = 3
	err := svc.UpdatePayment(ctx, "ACC999", update)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdatePayment_OverwritesAllFieldsWithoutRevalidation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{})

	existing := newPayment()
	existing.ID = 3
	repo.On("FindByID", ctx, int64(3)).Return(existing, nil)

	update := &domain.Payment{
		ID:            3,
		PaymentMethod: "cash",
		Origin:        "ACC002",
		Destination:   "bad",
		Amount:        decimal.NewFromInt(-1),
		PaymentDate:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local),
	}

	var saved *domain.Payment
	repo.On("Save", ctx, existing).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.Payment)
	}).Return(nil)

	// Act
	err := svc.UpdatePayment(ctx, "ACC001", update)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, int64(3), saved.ID)
	assert.Equal(t, "cash", saved.PaymentMethod)
	assert.Equal(t, "ACC002", saved.Origin)
	assert.Equal(t, "bad", saved.Destination)
	assert.True(t, saved.Amount.Equal(decimal.NewFromInt(-1)))
	assert.Equal(t, update.PaymentDate, saved.PaymentDate)
}

func TestDeletePayment_NoPayments(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{DeleteSelection: domain.SelectLatest})

	repo.On("FindByOrigin", ctx, "ACC001").Return([]*domain.Payment{}, nil)

	err := svc.DeletePayment(ctx, "ACC001", 0)

	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeletePayment_SecondPolicySingleRecordIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{DeleteSelection: domain.SelectSecond})

	repo.On("FindByOrigin", ctx, "ACC001").Return([]*domain.Payment{{ID: 1, Origin: "ACC001"}}, nil)

	err := svc.DeletePayment(ctx, "ACC001", 0)

	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeletePayment_SecondPolicyDeletesSecond(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{DeleteSelection: domain.SelectSecond})

	first := &domain.Payment{ID: 1, Origin: "ACC001"}
	second := &domain.Payment{ID: 2, Origin: "ACC001"}
	repo.On("FindByOrigin", ctx, "ACC001").Return([]*domain.Payment{first, second}, nil)
	repo.On("Delete", ctx, second).Return(nil)

	err := svc.DeletePayment(ctx, "ACC001", 0)

	require.NoError(t, err)
	repo.AssertCalled(t, "Delete", ctx, second)
	repo.AssertNotCalled(t, "Delete", ctx, first)
}

func TestDeletePayment_LatestPolicy(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{})

	only := &domain.Payment{ID: 8, Origin: "ACC001"}
	repo.On("FindByOrigin", ctx, "ACC001").Return([]*domain.Payment{only}, nil)
	repo.On("Delete", ctx, only).Return(nil)

	require.NoError(t, svc.DeletePayment(ctx, "ACC001", 0))
	repo.AssertExpectations(t)
}

func TestDeletePayment_ByIDForbidden(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{})

	repo.On("FindByID", ctx, int64(5)).Return(&domain.Payment{ID: 5, Origin: "ACC002"}, nil)

	err := svc.DeletePayment(ctx, "ACC001", 5)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeletePayment_ByID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{})

	target := &domain.Payment{ID: 5, Origin: "ACC001"}
	repo.On("FindByID", ctx, int64(5)).Return(target, nil)
	repo.On("Delete", ctx, target).Return(nil)

	require.NoError(t, svc.DeletePayment(ctx, "ACC001", 5))
	repo.AssertNotCalled(t, "FindByOrigin", mock.Anything, mock.Anything)
}

func TestDeletePayment_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentRepository)
	svc := newTestService(repo, new(MockUserDirectory), Options{})

	repo.On("FindByOrigin", ctx, "ACC001").Return(nil, errors.New("database connection error"))

	err := svc.DeletePayment(ctx, "ACC001", 0)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get payments")
}

// memoryRepository deletes rows atomically so concurrent deletes can be
// checked for double removal.
type memoryRepository struct {
	mu       sync.Mutex
	payments map[int64]*domain.Payment
	deleted  map[int64]int
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepository) FindByOrigin(_ context.Context, origin string) ([]*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.Origin == origin {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) Save(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[p.ID]; !ok {
		return domain.ErrPaymentNotFound
	}
	delete(r.payments, p.ID)
	r.deleted[p.ID]++
	return nil
}

func TestDeletePayment_ConcurrentDeletesNeverRemoveARowTwice(t *testing.T) {
	for _, policy := range []domain.DeleteSelection{domain.SelectFirst, domain.SelectSecond, domain.SelectLatest} {
		t.Run(string(policy), func(t *testing.T) {
			repo := &memoryRepository{
				payments: map[int64]*domain.Payment{
					1: {ID: 1, Origin: "ACC001"},
					2: {ID: 2, Origin: "ACC001"},
				},
				deleted: map[int64]int{},
			}
			svc := NewPaymentService(repo, new(MockUserDirectory), nil,
				Options{DeleteSelection: policy}, zap.NewNop())

			const workers = 2
			errs := make([]error, workers)
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					errs[i] = svc.DeletePayment(context.Background(), "ACC001", 0)
				}(i)
			}
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
			}

			assert.GreaterOrEqual(t, succeeded, 1)
			for id, n := range repo.deleted {
				assert.Equal(t, 1, n, "payment %d deleted more than once", id)
			}
			assert.Len(t, repo.payments, 2-succeeded)
		})
	}
}

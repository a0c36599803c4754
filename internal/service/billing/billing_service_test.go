package billing

import (
	"context"
	"testing"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPriceRepository struct {
	mock.Mock
}

func (m *MockPriceRepository) List(ctx context.Context) ([]domain.PriceConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PriceConfig), args.Error(1)
}

func (m *MockPriceRepository) GetByID(ctx context.Context, id int64) (*domain.PriceConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceConfig), args.Error(1)
}

func (m *MockPriceRepository) Create(ctx context.Context, cfg *domain.PriceConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockPriceRepository) Update(ctx context.Context, cfg *domain.PriceConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockPriceRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockPriceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockChargeRepository struct {
	mock.Mock
}

func (m *MockChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockChargeRepository) GetByID(ctx context.Context, id int64) (*domain.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}

func (m *MockChargeRepository) GetByReservation(ctx context.Context, reservationID int64) (*domain.Charge, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}

func (m *MockChargeRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time, providerRef string) (*domain.Charge, error) {
	args := m.Called(ctx, id, paidAt, providerRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}

func (m *MockChargeRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.ChargeStatus) (*domain.Charge, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}

func (m *MockChargeRepository) ListPendingDueBefore(ctx context.Context, deadline time.Time) ([]domain.Charge, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]domain.Charge), args.Error(1)
}

func TestBillingService_Issue_Success(t *testing.T) {
	mockPrices := &MockPriceRepository{}
	mockCharges := &MockChargeRepository{}
	service := &BillingService{prices: mockPrices, charges: mockCharges, currency: "USD"}

	ctx := context.Background()
	reservationID := int64(11)
	cfg := &domain.PriceConfig{ID: 1, Kind: domain.PriceKindFlat, BasePriceCents: 5000, Active: true}

	mockPrices.On("GetByID", ctx, int64(1)).Return(cfg, nil).Once()
	mockCharges.On("Create", ctx, mock.AnythingOfType("*domain.Charge")).Return(nil).Once()

	charge, err := service.Issue(ctx, IssueInput{
		ReservationID: &reservationID,
		PriceConfigID: 1,
		AmountCents:   5000,
	})

	assert.NoError(t, err)
	assert.NotNil(t, charge)
	assert.Equal(t, int64(5000), charge.AmountCents)
	assert.Equal(t, "USD", charge.Currency)
	assert.Equal(t, &reservationID, charge.ReservationID)

	mockPrices.AssertExpectations(t)
	mockCharges.AssertExpectations(t)
}

func TestBillingService_Issue_InactiveConfig(t *testing.T) {
	mockPrices := &MockPriceRepository{}
	mockCharges := &MockChargeRepository{}
	service := &BillingService{prices: mockPrices, charges: mockCharges, currency: "USD"}

	ctx := context.Background()
	reservationID := int64(11)
	cfg := &domain.PriceConfig{ID: 1, Kind: domain.PriceKindFlat, BasePriceCents: 5000, Active: false}

	mockPrices.On("GetByID", ctx, int64(1)).Return(cfg, nil).Once()

	charge, err := service.Issue(ctx, IssueInput{
		ReservationID: &reservationID,
		PriceConfigID: 1,
		AmountCents:   5000,
	})

	assert.ErrorIs(t, err, domain.ErrInactivePriceConfig)
	assert.Nil(t, charge)
	mockCharges.AssertNotCalled(t, "Create")
}

func TestBillingService_Issue_ConfigNotFound(t *testing.T) {
	mockPrices := &MockPriceRepository{}
	mockCharges := &MockChargeRepository{}
	service := &BillingService{prices: mockPrices, charges: mockCharges, currency: "USD"}

	ctx := context.Background()
	mockPrices.On("GetByID", ctx, int64(9)).Return(nil, domain.ErrNotFound).Once()

	charge, err := service.Issue(ctx, IssueInput{PriceConfigID: 9, AmountCents: 100})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, charge)
}

func TestBillingService_Cancel_OnlyFromPending(t *testing.T) {
	mockCharges := &MockChargeRepository{}
	service := &BillingService{charges: mockCharges, currency: "USD"}

	ctx := context.Background()
	// the repository enforces the PENDING -> CANCELED transition; a paid
	// charge comes back as ErrInvalidState
	mockCharges.On("UpdateStatus", ctx, int64(3), domain.ChargeStatusPending, domain.ChargeStatusCanceled).
		Return(nil, domain.ErrInvalidState).Once()

	charge, err := service.Cancel(ctx, 3)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Nil(t, charge)
	mockCharges.AssertExpectations(t)
}

func TestBillingService_MarkPaid_Delegates(t *testing.T) {
	mockCharges := &MockChargeRepository{}
	service := &BillingService{charges: mockCharges, currency: "USD"}

	ctx := context.Background()
	paidAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	ref := "prov-123"
	paid := &domain.Charge{ID: 3, Status: domain.ChargeStatusPaid, PaidAt: &paidAt, ProviderRef: &ref}

	mockCharges.On("MarkPaid", ctx, int64(3), paidAt, ref).Return(paid, nil).Once()

	charge, err := service.MarkPaid(ctx, 3, paidAt, ref)

	assert.NoError(t, err)
	assert.Equal(t, domain.ChargeStatusPaid, charge.Status)
	assert.Equal(t, &ref, charge.ProviderRef)
}

func TestBillingService_ListOverdue(t *testing.T) {
	mockCharges := &MockChargeRepository{}
	service := &BillingService{charges: mockCharges, currency: "USD"}

	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -2)
	overdue := []domain.Charge{{ID: 3, Status: domain.ChargeStatusPending, DueDate: &due}}

	mockCharges.On("ListPendingDueBefore", ctx, now).Return(overdue, nil).Once()

	charges, err := service.ListOverdue(ctx, now)

	assert.NoError(t, err)
	assert.Len(t, charges, 1)
	// stored status stays PENDING; OVERDUE is derived at read time
	assert.Equal(t, domain.ChargeStatusPending, charges[0].Status)
	assert.Equal(t, domain.ChargeStatusOverdue, domain.EffectiveStatus(&charges[0], now))
}

func TestNewBillingService_DefaultCurrency(t *testing.T) {
	service := NewBillingService(&MockPriceRepository{}, &MockChargeRepository{}, "")
	assert.Equal(t, "USD", service.currency)
}

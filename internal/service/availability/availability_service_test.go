package availability

import (
	"context"
	"testing"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAreaRepository struct {
	mock.Mock
}

func (m *MockAreaRepository) List(ctx context.Context) ([]domain.CommonArea, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CommonArea), args.Error(1)
}

func (m *MockAreaRepository) GetByID(ctx context.Context, id int64) (*domain.CommonArea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommonArea), args.Error(1)
}

func (m *MockAreaRepository) Create(ctx context.Context, area *domain.CommonArea) error {
	args := m.Called(ctx, area)
	return args.Error(0)
}

func (m *MockAreaRepository) Update(ctx context.Context, area *domain.CommonArea) error {
	args := m.Called(ctx, area)
	return args.Error(0)
}

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) CreateConflictFree(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Overlapping(ctx context.Context, areaID int64, date time.Time, startMinute, endMinute int) ([]domain.Reservation, error) {
	args := m.Called(ctx, areaID, date, startMinute, endMinute)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListActiveBetween(ctx context.Context, areaID int64, from, to time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, areaID, from, to)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) AttachCharge(ctx context.Context, id, chargeID int64) error {
	args := m.Called(ctx, id, chargeID)
	return args.Error(0)
}

func (m *MockReservationRepository) MarkNoCharge(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationRepository) MarkRefundRequired(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetAreas(ctx context.Context) ([]domain.CommonArea, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CommonArea), args.Error(1)
}

func (m *MockCache) SetAreas(ctx context.Context, areas []domain.CommonArea) error {
	args := m.Called(ctx, areas)
	return args.Error(0)
}

func (m *MockCache) InvalidateAreas(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func hallArea() *domain.CommonArea {
	return &domain.CommonArea{
		ID:          4,
		Name:        "Party Hall",
		Capacity:    60,
		OpenMinute:  9 * 60,
		CloseMinute: 22 * 60,
		Status:      domain.AreaStatusAvailable,
	}
}

func TestAvailabilityService_ListAreas_CacheHit(t *testing.T) {
	mockAreas := &MockAreaRepository{}
	mockCache := &MockCache{}
	service := &AvailabilityService{areas: mockAreas, cache: mockCache}

	ctx := context.Background()
	cached := []domain.CommonArea{*hallArea()}
	mockCache.On("GetAreas", ctx).Return(cached, nil).Once()

	areas, err := service.ListAreas(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, areas)
	mockAreas.AssertNotCalled(t, "List")
}

func TestAvailabilityService_ListAreas_CacheMiss(t *testing.T) {
	mockAreas := &MockAreaRepository{}
	mockCache := &MockCache{}
	service := &AvailabilityService{areas: mockAreas, cache: mockCache}

	ctx := context.Background()
	stored := []domain.CommonArea{*hallArea()}
	mockCache.On("GetAreas", ctx).Return(nil, nil).Once()
	mockAreas.On("List", ctx).Return(stored, nil).Once()
	mockCache.On("SetAreas", ctx, stored).Return(nil).Once()

	areas, err := service.ListAreas(ctx)

	assert.NoError(t, err)
	assert.Equal(t, stored, areas)
	mockCache.AssertExpectations(t)
}

func TestAvailabilityService_CreateArea_InvalidHours(t *testing.T) {
	service := &AvailabilityService{}
	ctx := context.Background()

	err := service.CreateArea(ctx, &domain.CommonArea{
		Name:        "Sauna",
		OpenMinute:  20 * 60,
		CloseMinute: 8 * 60,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestAvailabilityService_CreateArea_InvalidatesCache(t *testing.T) {
	mockAreas := &MockAreaRepository{}
	mockCache := &MockCache{}
	service := &AvailabilityService{areas: mockAreas, cache: mockCache}

	ctx := context.Background()
	area := &domain.CommonArea{Name: "Sauna", OpenMinute: 8 * 60, CloseMinute: 20 * 60}
	mockAreas.On("Create", ctx, area).Return(nil).Once()
	mockCache.On("InvalidateAreas", ctx).Return(nil).Once()

	err := service.CreateArea(ctx, area)

	assert.NoError(t, err)
	assert.Equal(t, domain.AreaStatusAvailable, area.Status)
	mockCache.AssertExpectations(t)
}

func TestAvailabilityService_CheckAvailability_Free(t *testing.T) {
	mockAreas := &MockAreaRepository{}
	mockReservations := &MockReservationRepository{}
	service := &AvailabilityService{areas: mockAreas, reservations: mockReservations}

	ctx := context.Background()
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	mockAreas.On("GetByID", ctx, int64(4)).Return(hallArea(), nil).Once()
	mockReservations.On("Overlapping", ctx, int64(4), date, 10*60, 12*60).Return([]domain.Reservation{}, nil).Once()

	result, err := service.CheckAvailability(ctx, 4, date, 10*60, 12*60)

	assert.NoError(t, err)
	assert.True(t, result.Available)
	assert.Empty(t, result.Conflicts)
}

func TestAvailabilityService_CheckAvailability_Conflict(t *testing.T) {
	mockAreas := &MockAreaRepository{}
	mockReservations := &MockReservationRepository{}
	service := &AvailabilityService{areas: mockAreas, reservations: mockReservations}

	ctx := context.Background()
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	existing := []domain.Reservation{
		{ID: 9, AreaID: 4, Date: date, StartMinute: 11 * 60, EndMinute: 13 * 60, Status: domain.ReservationStatusApproved},
	}
	mockAreas.On("GetByID", ctx, int64(4)).Return(hallArea(), nil).Once()
	mockReservations.On("Overlapping", ctx, int64(4), date, 10*60, 12*60).Return(existing, nil).Once()

	result, err := service.CheckAvailability(ctx, 4, date, 10*60, 12*60)

	assert.NoError(t, err)
	assert.False(t, result.Available)
	assert.Len(t, result.Conflicts, 1)
	assert.Equal(t, int64(9), result.Conflicts[0].ID)
}

func TestAvailabilityService_CheckAvailability_Maintenance(t *testing.T) {
	mockAreas := &MockAreaRepository{}
	mockReservations := &MockReservationRepository{}
	service := &AvailabilityService{areas: mockAreas, reservations: mockReservations}

	ctx := context.Background()
	area := hallArea()
	area.Status = domain.AreaStatusMaintenance
	mockAreas.On("GetByID", ctx, int64(4)).Return(area, nil).Once()

	result, err := service.CheckAvailability(ctx, 4, time.Now(), 10*60, 12*60)

	assert.ErrorIs(t, err, domain.ErrAreaUnavailable)
	assert.Nil(t, result)
	mockReservations.AssertNotCalled(t, "Overlapping")
}

func TestAvailabilityService_CheckAvailability_OutsideHours(t *testing.T) {
	mockAreas := &MockAreaRepository{}
	service := &AvailabilityService{areas: mockAreas}

	ctx := context.Background()
	mockAreas.On("GetByID", ctx, int64(4)).Return(hallArea(), nil).Once()

	// hall closes at 22:00; request runs to 23:00
	result, err := service.CheckAvailability(ctx, 4, time.Now(), 21*60, 23*60)

	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
	assert.Nil(t, result)
}

func TestAvailabilityService_OccupiedSlots(t *testing.T) {
	mockAreas := &MockAreaRepository{}
	mockReservations := &MockReservationRepository{}
	service := &AvailabilityService{areas: mockAreas, reservations: mockReservations}

	ctx := context.Background()
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	day := from.AddDate(0, 0, 2)
	active := []domain.Reservation{
		{ID: 9, AreaID: 4, Date: day, StartMinute: 10 * 60, EndMinute: 12 * 60, Status: domain.ReservationStatusApproved},
		{ID: 10, AreaID: 4, Date: day, StartMinute: 14 * 60, EndMinute: 15 * 60, Status: domain.ReservationStatusPending},
	}
	mockAreas.On("GetByID", ctx, int64(4)).Return(hallArea(), nil).Once()
	mockReservations.On("ListActiveBetween", ctx, int64(4), from, to).Return(active, nil).Once()

	slots, err := service.OccupiedSlots(ctx, 4, from, to)

	assert.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, 10*60, slots[0].StartMinute)
	assert.Equal(t, domain.ReservationStatusPending, slots[1].Status)
}

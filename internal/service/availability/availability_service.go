package availability

import (
	"context"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/repository"
)

type AvailabilityUseCase interface {
	ListAreas(ctx context.Context) ([]domain.CommonArea, error)
	GetArea(ctx context.Context, id int64) (*domain.CommonArea, error)
	CreateArea(ctx context.Context, area *domain.CommonArea) error
	UpdateArea(ctx context.Context, area *domain.CommonArea) error
	CheckAvailability(ctx context.Context, areaID int64, date time.Time, startMinute, endMinute int) (*CheckResult, error)
	OccupiedSlots(ctx context.Context, areaID int64, from, to time.Time) ([]Slot, error)
}

type Cache interface {
	GetAreas(ctx context.Context) ([]domain.CommonArea, error)
	SetAreas(ctx context.Context, areas []domain.CommonArea) error
	InvalidateAreas(ctx context.Context) error
}

// CheckResult reports whether a candidate interval is free and, when it is
// not, which reservations it collides with.
type CheckResult struct {
	Available bool
	Conflicts []domain.Reservation
}

// Slot is an occupied interval exposed for client-side calendars.
type Slot struct {
	Date        time.Time
	StartMinute int
	EndMinute   int
	Status      domain.ReservationStatus
}

type AvailabilityService struct {
	areas        repository.AreaRepository
	reservations repository.ReservationRepository
	cache        Cache
}

func NewAvailabilityService(areas repository.AreaRepository, reservations repository.ReservationRepository, cache Cache) *AvailabilityService {
	return &AvailabilityService{areas: areas, reservations: reservations, cache: cache}
}

func (s *AvailabilityService) ListAreas(ctx context.Context) ([]domain.CommonArea, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAreas(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	areas, err := s.areas.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetAreas(ctx, areas)
	}
	return areas, nil
}

func (s *AvailabilityService) GetArea(ctx context.Context, id int64) (*domain.CommonArea, error) {
	return s.areas.GetByID(ctx, id)
}

func (s *AvailabilityService) CreateArea(ctx context.Context, area *domain.CommonArea) error {
	if area.OpenMinute >= area.CloseMinute {
		return domain.ErrInvalidWindow
	}
	if area.Status == "" {
		area.Status = domain.AreaStatusAvailable
	}
	if err := s.areas.Create(ctx, area); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AvailabilityService) UpdateArea(ctx context.Context, area *domain.CommonArea) error {
	if area.OpenMinute >= area.CloseMinute {
		return domain.ErrInvalidWindow
	}
	if err := s.areas.Update(ctx, area); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AvailabilityService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAreas(ctx)
	}
}

// CheckAvailability is a pure read. A clean result here is advisory only:
// the conflict-free guarantee is re-checked transactionally when the
// reservation is created, since availability can change in between.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, areaID int64, date time.Time, startMinute, endMinute int) (*CheckResult, error) {
	if startMinute >= endMinute {
		return nil, domain.ErrInvalidWindow
	}

	area, err := s.areas.GetByID(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if !area.Bookable() {
		return nil, domain.ErrAreaUnavailable
	}
	if !area.WithinOperatingWindow(startMinute, endMinute) {
		return nil, domain.ErrInvalidWindow
	}

	conflicts, err := s.reservations.Overlapping(ctx, areaID, date, startMinute, endMinute)
	if err != nil {
		return nil, err
	}
	return &CheckResult{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

func (s *AvailabilityService) OccupiedSlots(ctx context.Context, areaID int64, from, to time.Time) ([]Slot, error) {
	if _, err := s.areas.GetByID(ctx, areaID); err != nil {
		return nil, err
	}

	reservations, err := s.reservations.ListActiveBetween(ctx, areaID, from, to)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(reservations))
	for _, res := range reservations {
		slots = append(slots, Slot{
			Date:        res.Date,
			StartMinute: res.StartMinute,
			EndMinute:   res.EndMinute,
			Status:      res.Status,
		})
	}
	return slots, nil
}

var _ AvailabilityUseCase = (*AvailabilityService)(nil)

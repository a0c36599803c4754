package reservation

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/kafka"
	"github.com/avaldes-dev/condoreserve/internal/repository"
)

type ReservationUseCase interface {
	Create(ctx context.Context, principal domain.Principal, input CreateInput) (*domain.Reservation, error)
	Get(ctx context.Context, id int64) (*domain.Reservation, error)
}

type Cache interface {
	AcquireSlotLock(ctx context.Context, areaID int64, date time.Time, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, areaID int64, date time.Time) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateInput struct {
	AreaID      int64
	Date        time.Time
	StartMinute int
	EndMinute   int
}

// ReservationService owns the reservation state machine. Creation holds a
// redis slot lock for the (area, date) pair while the repository re-checks
// overlap and inserts in one transaction; everything else is an optimistic
// single-row transition.
type ReservationService struct {
	reservations repository.ReservationRepository
	areas        repository.AreaRepository
	cache        Cache
	producer     Producer
	eventsTopic  string
	slotLockTTL  time.Duration
}

func NewReservationService(
	reservations repository.ReservationRepository,
	areas repository.AreaRepository,
	cache Cache,
	producer Producer,
	eventsTopic string,
	slotLockTTL time.Duration,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		areas:        areas,
		cache:        cache,
		producer:     producer,
		eventsTopic:  eventsTopic,
		slotLockTTL:  slotLockTTL,
	}
}

func (s *ReservationService) Create(ctx context.Context, principal domain.Principal, input CreateInput) (*domain.Reservation, error) {
	if input.StartMinute >= input.EndMinute {
		return nil, domain.ErrInvalidWindow
	}

	area, err := s.areas.GetByID(ctx, input.AreaID)
	if err != nil {
		return nil, err
	}
	if !area.Bookable() {
		return nil, domain.ErrAreaUnavailable
	}
	if !area.WithinOperatingWindow(input.StartMinute, input.EndMinute) {
		return nil, domain.ErrInvalidWindow
	}

	// the slot lock is a contention fast path, not a correctness gate: a
	// denied or failed acquire falls through to the insert, which re-checks
	// overlap under the database advisory lock, so concurrent creators only
	// fail on a real overlap
	locked := false
	if s.cache != nil {
		if ok, err := s.cache.AcquireSlotLock(ctx, input.AreaID, input.Date, s.slotLockTTL); err == nil && ok {
			locked = true
		}
	}

	reservation := &domain.Reservation{
		AreaID:      input.AreaID,
		RequesterID: principal.RequesterID,
		Date:        input.Date,
		StartMinute: input.StartMinute,
		EndMinute:   input.EndMinute,
	}

	err = s.reservations.CreateConflictFree(ctx, reservation)
	if locked {
		_ = s.cache.ReleaseSlotLock(ctx, input.AreaID, input.Date)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "reservation_created", reservation)
	return reservation, nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (*domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *ReservationService) publish(ctx context.Context, eventType string, res *domain.Reservation) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: res.ID,
		AreaID:        res.AreaID,
		RequesterID:   res.RequesterID,
		Status:        string(res.Status),
		OccurredAt:    time.Now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, strconv.FormatInt(res.ID, 10), event); err != nil {
		log.Printf("publish %s for reservation %d failed: %v", eventType, res.ID, err)
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)

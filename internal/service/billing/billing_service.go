package billing

import (
	"context"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/repository"
)

type PricingUseCase interface {
	ListPrices(ctx context.Context) ([]domain.PriceConfig, error)
	ResolvePrice(ctx context.Context, id int64) (*domain.PriceConfig, error)
	CreatePrice(ctx context.Context, cfg *domain.PriceConfig) error
	UpdatePrice(ctx context.Context, cfg *domain.PriceConfig) error
	TogglePrice(ctx context.Context, id int64, active bool) error
	DeletePrice(ctx context.Context, id int64) error
}

type LedgerUseCase interface {
	Issue(ctx context.Context, input IssueInput) (*domain.Charge, error)
	Get(ctx context.Context, id int64) (*domain.Charge, error)
	GetByReservation(ctx context.Context, reservationID int64) (*domain.Charge, error)
	MarkPaid(ctx context.Context, id int64, paidAt time.Time, providerRef string) (*domain.Charge, error)
	Cancel(ctx context.Context, id int64) (*domain.Charge, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Charge, error)
}

// IssueInput identifies the owner of the new charge: exactly one of
// ReservationID or PropertyID is set.
type IssueInput struct {
	ReservationID *int64
	PropertyID    *int64
	PriceConfigID int64
	AmountCents   int64
	DueDate       *time.Time
}

// BillingService is the pricing catalog and the charge ledger. A charge
// captures its amount at issuance; later price edits, deactivation or
// deletion never touch issued charges.
type BillingService struct {
	prices   repository.PriceRepository
	charges  repository.ChargeRepository
	currency string
}

func NewBillingService(prices repository.PriceRepository, charges repository.ChargeRepository, currency string) *BillingService {
	if currency == "" {
		currency = "USD"
	}
	return &BillingService{prices: prices, charges: charges, currency: currency}
}

func (s *BillingService) ListPrices(ctx context.Context) ([]domain.PriceConfig, error) {
	return s.prices.List(ctx)
}

func (s *BillingService) ResolvePrice(ctx context.Context, id int64) (*domain.PriceConfig, error) {
	return s.prices.GetByID(ctx, id)
}

func (s *BillingService) CreatePrice(ctx context.Context, cfg *domain.PriceConfig) error {
	return s.prices.Create(ctx, cfg)
}

func (s *BillingService) UpdatePrice(ctx context.Context, cfg *domain.PriceConfig) error {
	return s.prices.Update(ctx, cfg)
}

func (s *BillingService) TogglePrice(ctx context.Context, id int64, active bool) error {
	return s.prices.SetActive(ctx, id, active)
}

func (s *BillingService) DeletePrice(ctx context.Context, id int64) error {
	return s.prices.Delete(ctx, id)
}

// Issue creates a PENDING charge. The referenced price config must still
// be active; the amount passed in was computed by the caller from the
// config and the reserved interval and is stored verbatim.
func (s *BillingService) Issue(ctx context.Context, input IssueInput) (*domain.Charge, error) {
	cfg, err := s.prices.GetByID(ctx, input.PriceConfigID)
	if err != nil {
		return nil, err
	}
	if !cfg.Active {
		return nil, domain.ErrInactivePriceConfig
	}

	charge := &domain.Charge{
		ReservationID: input.ReservationID,
		PropertyID:    input.PropertyID,
		PriceConfigID: input.PriceConfigID,
		AmountCents:   input.AmountCents,
		Currency:      s.currency,
		DueDate:       input.DueDate,
	}
	if err := s.charges.Create(ctx, charge); err != nil {
		return nil, err
	}
	return charge, nil
}

func (s *BillingService) Get(ctx context.Context, id int64) (*domain.Charge, error) {
	return s.charges.GetByID(ctx, id)
}

func (s *BillingService) GetByReservation(ctx context.Context, reservationID int64) (*domain.Charge, error) {
	return s.charges.GetByReservation(ctx, reservationID)
}

// MarkPaid applies a provider confirmation. Redelivery with the same
// provider reference is a no-op; a different reference on a paid charge is
// ErrDuplicatePayment and the stored paid_at is preserved. The repository
// enforces this against the committed row, so concurrent confirmations and
// cancellations race safely.
func (s *BillingService) MarkPaid(ctx context.Context, id int64, paidAt time.Time, providerRef string) (*domain.Charge, error) {
	return s.charges.MarkPaid(ctx, id, paidAt, providerRef)
}

// Cancel moves a PENDING charge to CANCELED. Paid charges never leave
// PAID.
func (s *BillingService) Cancel(ctx context.Context, id int64) (*domain.Charge, error) {
	return s.charges.UpdateStatus(ctx, id, domain.ChargeStatusPending, domain.ChargeStatusCanceled)
}

// ListOverdue returns PENDING charges whose due date has passed. Purely a
// read: the stored status stays PENDING and a late payment still wins.
func (s *BillingService) ListOverdue(ctx context.Context, now time.Time) ([]domain.Charge, error) {
	return s.charges.ListPendingDueBefore(ctx, now)
}

var _ PricingUseCase = (*BillingService)(nil)
var _ LedgerUseCase = (*BillingService)(nil)

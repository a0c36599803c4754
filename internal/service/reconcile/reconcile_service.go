package reconcile

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/kafka"
	"github.com/avaldes-dev/condoreserve/internal/repository"
	"github.com/avaldes-dev/condoreserve/internal/service/billing"
	"github.com/avaldes-dev/condoreserve/internal/service/checkout"
)

type ReconcileUseCase interface {
	Approve(ctx context.Context, principal domain.Principal, reservationID int64) (*domain.Reservation, error)
	Cancel(ctx context.Context, principal domain.Principal, reservationID int64) (*domain.Reservation, error)
	HandleConfirmation(ctx context.Context, sessionID string, result domain.PaymentResult, providerRef string) error
	SweepOverdue(ctx context.Context, now time.Time) (SweepReport, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// SweepReport summarizes the periodic overdue pass. The sweep only reads;
// OVERDUE stays a derived view.
type SweepReport struct {
	Checked int
	Overdue int
}

// Service coordinates the reservation state machine, the charge ledger and
// the checkout broker so approval and payment stay consistent under
// retries and races no single component can see.
type Service struct {
	reservations       repository.ReservationRepository
	areas              repository.AreaRepository
	ledger             billing.LedgerUseCase
	pricing            billing.PricingUseCase
	broker             checkout.CheckoutUseCase
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	chargeDueDays      int
}

type Option func(*Service)

// WithNotificationsTopic mirrors resident-facing events onto a second
// topic consumed by the notification worker.
func WithNotificationsTopic(topic string) Option {
	return func(s *Service) {
		s.notificationsTopic = topic
	}
}

func NewService(
	reservations repository.ReservationRepository,
	areas repository.AreaRepository,
	ledger billing.LedgerUseCase,
	pricing billing.PricingUseCase,
	broker checkout.CheckoutUseCase,
	producer Producer,
	eventsTopic string,
	chargeDueDays int,
	opts ...Option,
) *Service {
	s := &Service{
		reservations:  reservations,
		areas:         areas,
		ledger:        ledger,
		pricing:       pricing,
		broker:        broker,
		producer:      producer,
		eventsTopic:   eventsTopic,
		chargeDueDays: chargeDueDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve moves a PENDING reservation to APPROVED and guarantees exactly
// one charge (or an explicit no-charge marker) exists afterwards. The call
// is idempotent on the charge side: re-running it after a crash between
// approval and issuance repairs the missing charge instead of failing or
// duplicating it.
func (s *Service) Approve(ctx context.Context, principal domain.Principal, reservationID int64) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	switch res.Status {
	case domain.ReservationStatusPending:
		res, err = s.reservations.UpdateStatus(ctx, reservationID, domain.ReservationStatusPending, domain.ReservationStatusApproved)
		if err != nil {
			return nil, err
		}
	case domain.ReservationStatusApproved:
		if res.ChargeID != nil || res.NoCharge {
			// already approved and invoiced
			return nil, domain.ErrInvalidState
		}
		// approved but the charge never landed; fall through and repair
	default:
		return nil, domain.ErrInvalidState
	}

	if err := s.ensureCharge(ctx, res); err != nil {
		return nil, err
	}

	updated, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if updated.Status == domain.ReservationStatusCanceled {
		// a concurrent cancel won between approval and issuance and could
		// not see the charge we just attached; retire it here
		if updated.ChargeID != nil {
			if err := s.settleCanceledCharge(ctx, updated, *updated.ChargeID); err != nil {
				return nil, err
			}
		}
		return nil, domain.ErrInvalidState
	}
	s.publish(ctx, "reservation_approved", updated, nil)
	return updated, nil
}

func (s *Service) ensureCharge(ctx context.Context, res *domain.Reservation) error {
	area, err := s.areas.GetByID(ctx, res.AreaID)
	if err != nil {
		return err
	}
	cfg, err := s.pricing.ResolvePrice(ctx, area.PriceConfigID)
	if err != nil {
		return err
	}

	amount := cfg.AmountCentsFor(res.StartMinute, res.EndMinute)
	if amount == 0 {
		return s.reservations.MarkNoCharge(ctx, res.ID)
	}

	var due *time.Time
	if s.chargeDueDays > 0 {
		d := time.Now().AddDate(0, 0, s.chargeDueDays)
		due = &d
	}

	charge, err := s.ledger.Issue(ctx, billing.IssueInput{
		ReservationID: &res.ID,
		PriceConfigID: cfg.ID,
		AmountCents:   amount,
		DueDate:       due,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			// a concurrent approval issued the charge first; adopt it
			existing, getErr := s.ledger.GetByReservation(ctx, res.ID)
			if getErr != nil {
				return getErr
			}
			return s.attachCharge(ctx, res.ID, existing.ID)
		}
		return err
	}

	if err := s.attachCharge(ctx, res.ID, charge.ID); err != nil {
		return err
	}
	s.publish(ctx, "charge_issued", res, charge)
	return nil
}

func (s *Service) attachCharge(ctx context.Context, reservationID, chargeID int64) error {
	err := s.reservations.AttachCharge(ctx, reservationID, chargeID)
	if errors.Is(err, domain.ErrInvalidState) {
		// already attached by the winning approver
		return nil
	}
	return err
}

// Cancel transitions a reservation to CANCELED from PENDING or APPROVED.
// A PENDING charge is canceled with it. A PAID charge stays PAID: the
// ledger never leaves a terminal state, so cancellation raises the
// refund-required flag for the finance collaborator instead.
func (s *Service) Cancel(ctx context.Context, principal domain.Principal, reservationID int64) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status == domain.ReservationStatusCanceled {
		return nil, domain.ErrInvalidState
	}

	updated, err := s.reservations.UpdateStatus(ctx, reservationID, res.Status, domain.ReservationStatusCanceled)
	if err != nil {
		return nil, err
	}

	if updated.ChargeID != nil {
		if err := s.settleCanceledCharge(ctx, updated, *updated.ChargeID); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, "reservation_canceled", updated, nil)
	return updated, nil
}

// settleCanceledCharge resolves the charge of a reservation that just went
// CANCELED: a PENDING charge is canceled, a PAID one raises the
// refund-required flag. A confirmation can commit between the read and the
// cancel, so a cancel rejected for state is re-read rather than trusted.
func (s *Service) settleCanceledCharge(ctx context.Context, res *domain.Reservation, chargeID int64) error {
	charge, err := s.ledger.Get(ctx, chargeID)
	if err != nil {
		return err
	}

	if charge.Status == domain.ChargeStatusPending {
		_, err := s.ledger.Cancel(ctx, charge.ID)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrInvalidState):
			charge, err = s.ledger.Get(ctx, charge.ID)
			if err != nil {
				return err
			}
		default:
			return err
		}
	}

	if charge.Status == domain.ChargeStatusPaid {
		if err := s.reservations.MarkRefundRequired(ctx, res.ID); err != nil {
			return err
		}
		res.RefundRequired = true
		s.publish(ctx, "refund_required", res, charge)
	}
	return nil
}

// HandleConfirmation is the single entry point for provider callbacks,
// shared by the webhook handler and the confirmations consumer. Unknown
// sessions are logged and swallowed: the provider retries regardless of
// our answer and an unknown id needs manual review, not an error loop.
func (s *Service) HandleConfirmation(ctx context.Context, sessionID string, result domain.PaymentResult, providerRef string) error {
	charge, err := s.broker.HandleConfirmation(ctx, sessionID, result, providerRef)
	switch {
	case err == nil:
		if charge != nil {
			s.publish(ctx, "charge_paid", nil, charge)
		}
		return nil
	case errors.Is(err, domain.ErrUnknownSession):
		log.Printf("confirmation for unknown session %s (ref %s), queued for review", sessionID, providerRef)
		return nil
	case errors.Is(err, domain.ErrDuplicatePayment):
		// manual-review queue: the event is published, the original
		// paid_at stands untouched
		if charge != nil {
			s.publish(ctx, "duplicate_payment", nil, charge)
		}
		return err
	default:
		return err
	}
}

// SweepOverdue reports PENDING charges past due for the scheduler
// collaborator. No writes happen here.
func (s *Service) SweepOverdue(ctx context.Context, now time.Time) (SweepReport, error) {
	charges, err := s.ledger.ListOverdue(ctx, now)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Checked: len(charges)}
	for i := range charges {
		if domain.EffectiveStatus(&charges[i], now) == domain.ChargeStatusOverdue {
			report.Overdue++
		}
	}
	return report, nil
}

func (s *Service) publish(ctx context.Context, eventType string, res *domain.Reservation, charge *domain.Charge) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{Type: eventType, OccurredAt: time.Now()}
	key := eventType
	if res != nil {
		event.ReservationID = res.ID
		event.AreaID = res.AreaID
		event.RequesterID = res.RequesterID
		event.Status = string(res.Status)
		key = strconv.FormatInt(res.ID, 10)
	}
	if charge != nil {
		event.ChargeID = charge.ID
		event.AmountCents = charge.AmountCents
		if res == nil {
			key = strconv.FormatInt(charge.ID, 10)
		}
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, key, event); err != nil {
		log.Printf("publish %s failed: %v", eventType, err)
	}
	if s.notificationsTopic != "" && notifiable[eventType] {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			log.Printf("publish notification %s failed: %v", eventType, err)
		}
	}
}

// notifiable lists the event types residents hear about directly.
var notifiable = map[string]bool{
	"reservation_approved": true,
	"reservation_canceled": true,
	"charge_issued":        true,
	"charge_paid":          true,
	"refund_required":      true,
}

var _ ReconcileUseCase = (*Service)(nil)

package checkout

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/avaldes-dev/condoreserve/internal/payments"
	"github.com/avaldes-dev/condoreserve/internal/repository"
	"github.com/avaldes-dev/condoreserve/internal/service/billing"
)

type CheckoutUseCase interface {
	OpenSession(ctx context.Context, chargeID int64) (*domain.CheckoutSession, error)
	HandleConfirmation(ctx context.Context, sessionID string, result domain.PaymentResult, providerRef string) (*domain.Charge, error)
	PruneSessions(ctx context.Context, now time.Time) (int64, error)
}

type ProviderClient interface {
	CreateSession(ctx context.Context, req payments.SessionRequest) (string, error)
}

// Broker opens provider checkout sessions for charges and translates
// confirmations back into ledger transitions. Retrying OpenSession for the
// same charge is allowed: every call yields a fresh session, and all
// sessions for one charge race to the same terminal state because the
// ledger's MarkPaid is idempotent. The broker never arbitrates payment
// state itself.
type Broker struct {
	sessions   repository.SessionRepository
	ledger     billing.LedgerUseCase
	provider   ProviderClient
	sessionTTL time.Duration
}

func NewBroker(sessions repository.SessionRepository, ledger billing.LedgerUseCase, provider ProviderClient, sessionTTL time.Duration) *Broker {
	if sessionTTL == 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Broker{sessions: sessions, ledger: ledger, provider: provider, sessionTTL: sessionTTL}
}

func (b *Broker) OpenSession(ctx context.Context, chargeID int64) (*domain.CheckoutSession, error) {
	charge, err := b.ledger.Get(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	if charge.Status != domain.ChargeStatusPending {
		return nil, domain.ErrChargeNotPayable
	}

	sessionID, err := b.provider.CreateSession(ctx, payments.SessionRequest{
		AmountCents: charge.AmountCents,
		Currency:    charge.Currency,
		Metadata:    map[string]string{"charge_id": strconv.FormatInt(charge.ID, 10)},
	})
	if err != nil {
		// the charge was not touched; the caller may retry freely
		return nil, err
	}

	session := &domain.CheckoutSession{
		ID:          sessionID,
		ChargeID:    charge.ID,
		AmountCents: charge.AmountCents,
		Currency:    charge.Currency,
		ExpiresAt:   time.Now().Add(b.sessionTTL),
	}
	if err := b.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// HandleConfirmation maps one provider callback to at most one ledger
// transition. Confirmations arrive at least once and in no particular
// order relative to OpenSession returning, so everything here must be safe
// to rerun.
func (b *Broker) HandleConfirmation(ctx context.Context, sessionID string, result domain.PaymentResult, providerRef string) (*domain.Charge, error) {
	session, err := b.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, domain.ErrUnknownSession
	}

	if result != domain.PaymentResultSuccess {
		// declined payments are recorded but never transition the charge
		log.Printf("payment declined for session %s (charge %d, ref %s)", sessionID, session.ChargeID, providerRef)
		_ = b.sessions.MarkConsumed(ctx, sessionID)
		return nil, nil
	}

	charge, err := b.ledger.MarkPaid(ctx, session.ChargeID, time.Now(), providerRef)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			// surfaced for manual review, never resolved automatically
			log.Printf("duplicate payment reference %s for charge %d (session %s)", providerRef, session.ChargeID, sessionID)
		}
		return charge, err
	}

	_ = b.sessions.MarkConsumed(ctx, sessionID)
	return charge, nil
}

// PruneSessions drops correlation records past their window.
func (b *Broker) PruneSessions(ctx context.Context, now time.Time) (int64, error) {
	return b.sessions.DeleteExpiredBefore(ctx, now)
}

var _ CheckoutUseCase = (*Broker)(nil)

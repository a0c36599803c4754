package domain

import "time"

// CheckoutSession is a short-lived correlation record binding one
// provider-issued session id to a charge. Sessions exist only to map an
// external confirmation back to a charge; the charge ledger, not the
// session, is what makes payment application idempotent.
type CheckoutSession struct {
	ID          string
	ChargeID    int64
	AmountCents int64
	Currency    string
	Consumed    bool
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the session window has closed.
func (s *CheckoutSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// PaymentResult is the provider's verdict delivered through the webhook or
// the confirmations topic.
type PaymentResult string

const (
	PaymentResultSuccess  PaymentResult = "success"
	PaymentResultDeclined PaymentResult = "declined"
)

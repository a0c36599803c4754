package domain

import "time"

type ChargeStatus string

const (
	ChargeStatusPending  ChargeStatus = "PENDING"
	ChargeStatusPaid     ChargeStatus = "PAID"
	ChargeStatusCanceled ChargeStatus = "CANCELED"

	// ChargeStatusOverdue is a derived view-only status, never stored.
	ChargeStatusOverdue ChargeStatus = "OVERDUE"
)

// Charge is one monetary obligation, owned by a reservation or raised
// ad hoc against a property (fine, fee). AmountCents is captured from the
// price catalog at issuance and never recomputed.
type Charge struct {
	ID            int64
	ReservationID *int64
	PropertyID    *int64
	PriceConfigID int64
	AmountCents   int64
	Currency      string
	DueDate       *time.Time
	Status        ChargeStatus
	ProviderRef   *string
	IssuedAt      time.Time
	PaidAt        *time.Time
}

// EffectiveStatus derives the reporting status at a point in time. A
// PENDING charge past its due date reads as OVERDUE but a late payment
// still moves it to PAID, so OVERDUE is never persisted.
func EffectiveStatus(c *Charge, now time.Time) ChargeStatus {
	if c.Status == ChargeStatusPending && c.DueDate != nil && c.DueDate.Before(now) {
		return ChargeStatusOverdue
	}
	return c.Status
}

package domain

import "time"

type PriceKind string

const (
	PriceKindFlat   PriceKind = "FLAT"
	PriceKindHourly PriceKind = "HOURLY"
)

// PriceConfig is a named catalog price. Amounts are integer cents to keep
// money arithmetic exact. A config is effectively immutable once a charge
// has captured its amount: later edits or deactivation only affect future
// charges.
type PriceConfig struct {
	ID             int64
	Label          string
	Kind           PriceKind
	BasePriceCents int64
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AmountCentsFor computes the amount owed for a [start, end) interval.
// Flat prices ignore the duration; hourly prices are prorated by minute.
func (p *PriceConfig) AmountCentsFor(startMinute, endMinute int) int64 {
	if p.Kind == PriceKindFlat {
		return p.BasePriceCents
	}
	minutes := int64(endMinute - startMinute)
	if minutes < 0 {
		minutes = 0
	}
	return p.BasePriceCents * minutes / 60
}

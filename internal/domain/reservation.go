package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending  ReservationStatus = "PENDING"
	ReservationStatusApproved ReservationStatus = "APPROVED"
	ReservationStatusCanceled ReservationStatus = "CANCELED"
)

// Reservation is a request to use a common area for a bounded interval on
// a single date. Reservations are never deleted; cancellation is a status
// transition so history stays available for reporting.
type Reservation struct {
	ID             int64
	AreaID         int64
	RequesterID    int64
	Date           time.Time
	StartMinute    int
	EndMinute      int
	Status         ReservationStatus
	ChargeID       *int64
	NoCharge       bool
	RefundRequired bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Active reports whether the reservation still occupies its slot.
// Only PENDING and APPROVED reservations participate in conflict checks.
func (r *Reservation) Active() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusApproved
}

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect. Touching endpoints do not conflict.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// ConflictsWith reports whether two reservations compete for the same slot.
func (r *Reservation) ConflictsWith(other *Reservation) bool {
	if r.AreaID != other.AreaID || !r.Date.Equal(other.Date) {
		return false
	}
	return Overlaps(r.StartMinute, r.EndMinute, other.StartMinute, other.EndMinute)
}

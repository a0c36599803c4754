package domain

import (
	"fmt"
	"time"
)

type AreaStatus string

const (
	AreaStatusAvailable   AreaStatus = "AVAILABLE"
	AreaStatusMaintenance AreaStatus = "MAINTENANCE"
	AreaStatusClosed      AreaStatus = "CLOSED"
)

// CommonArea is a bookable shared resource (pool, hall, court).
// Operating hours are stored as minutes from midnight; a reservation
// interval must fall inside [OpenMinute, CloseMinute).
type CommonArea struct {
	ID            int64
	Name          string
	Capacity      int
	OpenMinute    int
	CloseMinute   int
	Status        AreaStatus
	PriceConfigID int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Bookable reports whether new reservations may be created for the area.
// MAINTENANCE and CLOSED areas reject new reservations but existing ones
// are untouched.
func (a *CommonArea) Bookable() bool {
	return a.Status == AreaStatusAvailable
}

// WithinOperatingWindow checks a candidate [start, end) interval against
// the area's operating hours.
func (a *CommonArea) WithinOperatingWindow(startMinute, endMinute int) bool {
	return startMinute >= a.OpenMinute && endMinute <= a.CloseMinute
}

// ParseMinute converts "HH:MM" to minutes from midnight.
func ParseMinute(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || h*60+m > 24*60 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// FormatMinute renders minutes from midnight as "HH:MM".
func FormatMinute(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

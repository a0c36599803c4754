// Package domain holds the core types of the reservation and billing core
// together with the sentinel errors shared across services and handlers.
// Handlers translate these into HTTP responses; services compare them with
// errors.Is.
package domain

import "errors"

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a candidate reservation overlaps an active
// reservation for the same area and date at commit time.
var ErrConflict = errors.New("reservation conflict")

// ErrInvalidWindow is returned when a candidate interval falls outside the
// area's operating hours or is empty.
var ErrInvalidWindow = errors.New("outside operating window")

// ErrAreaUnavailable is returned when the area is under maintenance or
// closed and rejects new reservations.
var ErrAreaUnavailable = errors.New("area not available for booking")

// ErrInvalidState is returned on an illegal lifecycle transition, which
// usually means the caller holds a stale view.
var ErrInvalidState = errors.New("invalid state transition")

// ErrInactivePriceConfig is returned when issuing a charge against a
// deactivated price config.
var ErrInactivePriceConfig = errors.New("price config is inactive")

// ErrChargeNotPayable is returned when opening a checkout session for a
// charge that is not PENDING.
var ErrChargeNotPayable = errors.New("charge is not payable")

// ErrDuplicatePayment is returned when a paid charge receives a second
// confirmation with a different provider reference. It must reach a
// manual-review queue, never be resolved automatically.
var ErrDuplicatePayment = errors.New("duplicate payment reference")

// ErrUnknownSession is returned for confirmations referencing a session
// that was never opened or has expired.
var ErrUnknownSession = errors.New("unknown checkout session")

// ErrProviderTimeout is returned when the payment provider does not answer
// within the configured deadline. The charge stays PENDING and the caller
// may retry.
var ErrProviderTimeout = errors.New("payment provider timeout")

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const chargeColumns = `id, reservation_id, property_id, price_config_id, amount_cents, currency, due_date, status, provider_ref, issued_at, paid_at`

type ChargeRepository interface {
	Create(ctx context.Context, charge *domain.Charge) error
	GetByID(ctx context.Context, id int64) (*domain.Charge, error)
	GetByReservation(ctx context.Context, reservationID int64) (*domain.Charge, error)
	MarkPaid(ctx context.Context, id int64, paidAt time.Time, providerRef string) (*domain.Charge, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.ChargeStatus) (*domain.Charge, error)
	ListPendingDueBefore(ctx context.Context, deadline time.Time) ([]domain.Charge, error)
}

type PGChargeRepository struct {
	db *pgxpool.Pool
}

func NewChargeRepository(db *pgxpool.Pool) ChargeRepository {
	return &PGChargeRepository{db: db}
}

// Create inserts the charge. A partial unique index on reservation_id
// enforces at most one charge per reservation; a violation surfaces as
// ErrInvalidState so a concurrent double-issue loses cleanly.
func (r *PGChargeRepository) Create(ctx context.Context, charge *domain.Charge) error {
	charge.Status = domain.ChargeStatusPending
	err := r.db.QueryRow(ctx, `INSERT INTO charges (reservation_id, property_id, price_config_id, amount_cents, currency, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, issued_at`,
		charge.ReservationID, charge.PropertyID, charge.PriceConfigID, charge.AmountCents, charge.Currency, charge.DueDate, charge.Status).
		Scan(&charge.ID, &charge.IssuedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrInvalidState
		}
		return err
	}
	return nil
}

func (r *PGChargeRepository) GetByID(ctx context.Context, id int64) (*domain.Charge, error) {
	row := r.db.QueryRow(ctx, `SELECT `+chargeColumns+` FROM charges WHERE id=$1`, id)
	return scanCharge(row)
}

func (r *PGChargeRepository) GetByReservation(ctx context.Context, reservationID int64) (*domain.Charge, error) {
	row := r.db.QueryRow(ctx, `SELECT `+chargeColumns+` FROM charges WHERE reservation_id=$1`, reservationID)
	return scanCharge(row)
}

// MarkPaid is the idempotency point for payment application. The
// conditional update only ever fires once; when it misses, the stored row
// decides the outcome: same provider reference means a redelivered
// confirmation (no-op), a different reference after PAID is a duplicate
// payment kept for manual review, anything else is not payable.
func (r *PGChargeRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time, providerRef string) (*domain.Charge, error) {
	row := r.db.QueryRow(ctx, `UPDATE charges SET status=$1, paid_at=$2, provider_ref=$3 WHERE id=$4 AND status=$5 RETURNING `+chargeColumns,
		domain.ChargeStatusPaid, paidAt, providerRef, id, domain.ChargeStatusPending)
	updated, err := scanCharge(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.ChargeStatusPaid {
		if current.ProviderRef != nil && *current.ProviderRef == providerRef {
			return current, nil
		}
		return current, domain.ErrDuplicatePayment
	}
	return nil, domain.ErrChargeNotPayable
}

func (r *PGChargeRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.ChargeStatus) (*domain.Charge, error) {
	row := r.db.QueryRow(ctx, `UPDATE charges SET status=$1 WHERE id=$2 AND status=$3 RETURNING `+chargeColumns, to, id, from)
	updated, err := scanCharge(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrInvalidState
}

func (r *PGChargeRepository) ListPendingDueBefore(ctx context.Context, deadline time.Time) ([]domain.Charge, error) {
	rows, err := r.db.Query(ctx, `SELECT `+chargeColumns+` FROM charges WHERE status=$1 AND due_date IS NOT NULL AND due_date < $2 ORDER BY due_date`,
		domain.ChargeStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	charges := make([]domain.Charge, 0)
	for rows.Next() {
		var c domain.Charge
		if err := rows.Scan(&c.ID, &c.ReservationID, &c.PropertyID, &c.PriceConfigID, &c.AmountCents, &c.Currency, &c.DueDate, &c.Status, &c.ProviderRef, &c.IssuedAt, &c.PaidAt); err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}

func scanCharge(row pgx.Row) (*domain.Charge, error) {
	var c domain.Charge
	if err := row.Scan(&c.ID, &c.ReservationID, &c.PropertyID, &c.PriceConfigID, &c.AmountCents, &c.Currency, &c.DueDate, &c.Status, &c.ProviderRef, &c.IssuedAt, &c.PaidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

var _ ChargeRepository = (*PGChargeRepository)(nil)

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.CheckoutSession) error
	GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error)
	MarkConsumed(ctx context.Context, id string) error
	DeleteExpiredBefore(ctx context.Context, deadline time.Time) (int64, error)
}

type PGSessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) SessionRepository {
	return &PGSessionRepository{db: db}
}

func (r *PGSessionRepository) Create(ctx context.Context, session *domain.CheckoutSession) error {
	return r.db.QueryRow(ctx, `INSERT INTO checkout_sessions (id, charge_id, amount_cents, currency, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		session.ID, session.ChargeID, session.AmountCents, session.Currency, session.ExpiresAt).
		Scan(&session.CreatedAt)
}

func (r *PGSessionRepository) GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	row := r.db.QueryRow(ctx, `SELECT id, charge_id, amount_cents, currency, consumed, created_at, expires_at FROM checkout_sessions WHERE id=$1`, id)
	var s domain.CheckoutSession
	if err := row.Scan(&s.ID, &s.ChargeID, &s.AmountCents, &s.Currency, &s.Consumed, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownSession
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGSessionRepository) MarkConsumed(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE checkout_sessions SET consumed=TRUE WHERE id=$1`, id)
	return err
}

// DeleteExpiredBefore prunes correlation records past their window. Sessions
// are the only rows the core ever deletes.
func (r *PGSessionRepository) DeleteExpiredBefore(ctx context.Context, deadline time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM checkout_sessions WHERE expires_at < $1`, deadline)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

var _ SessionRepository = (*PGSessionRepository)(nil)

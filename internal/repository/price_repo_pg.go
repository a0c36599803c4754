package repository

import (
	"context"
	"errors"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PriceRepository interface {
	List(ctx context.Context) ([]domain.PriceConfig, error)
	GetByID(ctx context.Context, id int64) (*domain.PriceConfig, error)
	Create(ctx context.Context, cfg *domain.PriceConfig) error
	Update(ctx context.Context, cfg *domain.PriceConfig) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type PGPriceRepository struct {
	db *pgxpool.Pool
}

func NewPriceRepository(db *pgxpool.Pool) PriceRepository {
	return &PGPriceRepository{db: db}
}

func (r *PGPriceRepository) List(ctx context.Context) ([]domain.PriceConfig, error) {
	rows, err := r.db.Query(ctx, `SELECT id, label, kind, base_price_cents, active, created_at, updated_at FROM price_configs ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := make([]domain.PriceConfig, 0)
	for rows.Next() {
		var p domain.PriceConfig
		if err := rows.Scan(&p.ID, &p.Label, &p.Kind, &p.BasePriceCents, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, p)
	}
	return configs, rows.Err()
}

func (r *PGPriceRepository) GetByID(ctx context.Context, id int64) (*domain.PriceConfig, error) {
	row := r.db.QueryRow(ctx, `SELECT id, label, kind, base_price_cents, active, created_at, updated_at FROM price_configs WHERE id=$1`, id)
	var p domain.PriceConfig
	if err := row.Scan(&p.ID, &p.Label, &p.Kind, &p.BasePriceCents, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGPriceRepository) Create(ctx context.Context, cfg *domain.PriceConfig) error {
	return r.db.QueryRow(ctx, `INSERT INTO price_configs (label, kind, base_price_cents, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`, cfg.Label, cfg.Kind, cfg.BasePriceCents, cfg.Active).
		Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
}

func (r *PGPriceRepository) Update(ctx context.Context, cfg *domain.PriceConfig) error {
	cmd, err := r.db.Exec(ctx, `UPDATE price_configs SET label=$1, kind=$2, base_price_cents=$3, active=$4, updated_at=now() WHERE id=$5`,
		cfg.Label, cfg.Kind, cfg.BasePriceCents, cfg.Active, cfg.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGPriceRepository) SetActive(ctx context.Context, id int64, active bool) error {
	cmd, err := r.db.Exec(ctx, `UPDATE price_configs SET active=$1, updated_at=now() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a config row. Charges keep their captured amount, so
// deleting a config never rewrites issued charges.
func (r *PGPriceRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM price_configs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ PriceRepository = (*PGPriceRepository)(nil)

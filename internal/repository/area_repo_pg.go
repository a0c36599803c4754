package repository

import (
	"context"
	"errors"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AreaRepository interface {
	List(ctx context.Context) ([]domain.CommonArea, error)
	GetByID(ctx context.Context, id int64) (*domain.CommonArea, error)
	Create(ctx context.Context, area *domain.CommonArea) error
	Update(ctx context.Context, area *domain.CommonArea) error
}

type PGAreaRepository struct {
	db *pgxpool.Pool
}

func NewAreaRepository(db *pgxpool.Pool) AreaRepository {
	return &PGAreaRepository{db: db}
}

func (r *PGAreaRepository) List(ctx context.Context) ([]domain.CommonArea, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, capacity, open_minute, close_minute, status, price_config_id, created_at, updated_at FROM common_areas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	areas := make([]domain.CommonArea, 0)
	for rows.Next() {
		var a domain.CommonArea
		if err := rows.Scan(&a.ID, &a.Name, &a.Capacity, &a.OpenMinute, &a.CloseMinute, &a.Status, &a.PriceConfigID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

func (r *PGAreaRepository) GetByID(ctx context.Context, id int64) (*domain.CommonArea, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, capacity, open_minute, close_minute, status, price_config_id, created_at, updated_at FROM common_areas WHERE id=$1`, id)
	var a domain.CommonArea
	if err := row.Scan(&a.ID, &a.Name, &a.Capacity, &a.OpenMinute, &a.CloseMinute, &a.Status, &a.PriceConfigID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGAreaRepository) Create(ctx context.Context, area *domain.CommonArea) error {
	return r.db.QueryRow(ctx, `INSERT INTO common_areas (name, capacity, open_minute, close_minute, status, price_config_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`, area.Name, area.Capacity, area.OpenMinute, area.CloseMinute, area.Status, area.PriceConfigID).
		Scan(&area.ID, &area.CreatedAt, &area.UpdatedAt)
}

func (r *PGAreaRepository) Update(ctx context.Context, area *domain.CommonArea) error {
	cmd, err := r.db.Exec(ctx, `UPDATE common_areas SET name=$1, capacity=$2, open_minute=$3, close_minute=$4, status=$5, price_config_id=$6, updated_at=now() WHERE id=$7`,
		area.Name, area.Capacity, area.OpenMinute, area.CloseMinute, area.Status, area.PriceConfigID, area.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ AreaRepository = (*PGAreaRepository)(nil)

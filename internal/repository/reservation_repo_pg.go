package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avaldes-dev/condoreserve/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = `id, area_id, requester_id, res_date, start_minute, end_minute, status, charge_id, no_charge, refund_required, created_at, updated_at`

type ReservationRepository interface {
	CreateConflictFree(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	Overlapping(ctx context.Context, areaID int64, date time.Time, startMinute, endMinute int) ([]domain.Reservation, error)
	ListActiveBetween(ctx context.Context, areaID int64, from, to time.Time) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) (*domain.Reservation, error)
	AttachCharge(ctx context.Context, id, chargeID int64) error
	MarkNoCharge(ctx context.Context, id int64) error
	MarkRefundRequired(ctx context.Context, id int64) error
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

// CreateConflictFree inserts the reservation only if no PENDING or APPROVED
// reservation overlaps it on the same area and date. The overlap check and
// the insert run in one transaction holding a per-(area, date) advisory
// lock, which closes the race where two concurrent requests both pass the
// availability read and both insert.
func (r *PGReservationRepository) CreateConflictFree(ctx context.Context, reservation *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`,
		reservation.AreaID, reservation.Date.Format("2006-01-02")); err != nil {
		return err
	}

	var conflicts int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM reservations
		WHERE area_id=$1 AND res_date=$2 AND status IN ('PENDING','APPROVED')
		AND start_minute < $4 AND end_minute > $3`,
		reservation.AreaID, reservation.Date, reservation.StartMinute, reservation.EndMinute).Scan(&conflicts); err != nil {
		return err
	}
	if conflicts > 0 {
		return domain.ErrConflict
	}

	reservation.Status = domain.ReservationStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO reservations (area_id, requester_id, res_date, start_minute, end_minute, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		reservation.AreaID, reservation.RequesterID, reservation.Date, reservation.StartMinute, reservation.EndMinute, reservation.Status).
		Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	return scanReservation(row)
}

func (r *PGReservationRepository) Overlapping(ctx context.Context, areaID int64, date time.Time, startMinute, endMinute int) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE area_id=$1 AND res_date=$2 AND status IN ('PENDING','APPROVED')
		AND start_minute < $4 AND end_minute > $3
		ORDER BY start_minute`, areaID, date, startMinute, endMinute)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *PGReservationRepository) ListActiveBetween(ctx context.Context, areaID int64, from, to time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE area_id=$1 AND res_date BETWEEN $2 AND $3 AND status IN ('PENDING','APPROVED')
		ORDER BY res_date, start_minute`, areaID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// UpdateStatus performs an optimistic single-row transition. When zero rows
// match, the row either does not exist or is no longer in the expected
// state; the current row is fetched to tell the two apart.
func (r *PGReservationRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET status=$1, updated_at=now() WHERE id=$2 AND status=$3 RETURNING `+reservationColumns, to, id, from)
	updated, err := scanReservation(row)
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

func (r *PGReservationRepository) AttachCharge(ctx context.Context, id, chargeID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE reservations SET charge_id=$1, updated_at=now() WHERE id=$2 AND charge_id IS NULL`, chargeID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

func (r *PGReservationRepository) MarkNoCharge(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE reservations SET no_charge=TRUE, updated_at=now() WHERE id=$1`, id)
	return err
}

func (r *PGReservationRepository) MarkRefundRequired(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE reservations SET refund_required=TRUE, updated_at=now() WHERE id=$1`, id)
	return err
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := row.Scan(&res.ID, &res.AreaID, &res.RequesterID, &res.Date, &res.StartMinute, &res.EndMinute, &res.Status, &res.ChargeID, &res.NoCharge, &res.RefundRequired, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.AreaID, &res.RequesterID, &res.Date, &res.StartMinute, &res.EndMinute, &res.Status, &res.ChargeID, &res.NoCharge, &res.RefundRequired, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)

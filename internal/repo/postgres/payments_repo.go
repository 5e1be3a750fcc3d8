package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborstay/reservations/internal/domain"
)

type PaymentsRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByExternalRef(ctx context.Context, ref string) (*domain.Payment, error)
	// MarkCaptured flips a pending payment to captured. Returns false when
	// the payment was already captured, so replays are detectable.
	MarkCaptured(ctx context.Context, id uuid.UUID, externalRef string) (bool, error)
}

type paymentsRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentsRepo(pool *pgxpool.Pool) PaymentsRepo {
	return &paymentsRepo{pool: pool}
}

const paymentCols = `id, reservation_id, amount_cents, status, external_ref, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.ReservationID, &p.AmountCents, &p.Status, &p.ExternalRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentsRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPayment(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *paymentsRepo) GetByExternalRef(ctx context.Context, ref string) (*domain.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE external_ref=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPayment(r.pool.QueryRow(ctx, q, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *paymentsRepo) MarkCaptured(ctx context.Context, id uuid.UUID, externalRef string) (bool, error) {
	const q = `UPDATE payments
		SET status='captured', external_ref=COALESCE(NULLIF($2,''), external_ref), updated_at=now()
		WHERE id=$1 AND status <> 'captured'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, externalRef)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

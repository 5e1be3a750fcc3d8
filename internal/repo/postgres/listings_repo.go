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

// ListingsRepo is the read-only directory of bookable units. The
// reservation core never writes listings.
type ListingsRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

type listingsRepo struct {
	pool *pgxpool.Pool
}

func NewListingsRepo(pool *pgxpool.Pool) ListingsRepo {
	return &listingsRepo{pool: pool}
}

func (r *listingsRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	const q = `SELECT id, host_id, nightly_rate_cents, max_guests, deleted
		FROM listings WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var l domain.Listing
	err := r.pool.QueryRow(ctx, q, id).Scan(&l.ID, &l.HostID, &l.NightlyRateCents, &l.MaxGuests, &l.Deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingsRepo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM listings WHERE id=$1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, id).Scan(&exists)
	return exists, err
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborstay/reservations/internal/domain"
)

type ReservationsRepo interface {
	// CreateIfAvailable inserts the reservation only when no live
	// reservation overlaps its dates. The overlap check and the insert run
	// in one transaction holding a row lock on the listing, so two
	// concurrent requests for the same listing serialize at the store.
	CreateIfAvailable(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	HasOverlap(ctx context.Context, listingID uuid.UUID, stay domain.DateRange) (bool, error)
	ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]domain.Reservation, error)
	ListByListing(ctx context.Context, listingID uuid.UUID, limit, offset int) ([]domain.Reservation, error)
	Search(ctx context.Context, filter domain.SearchFilter, limit, offset int) ([]domain.Reservation, error)
	// SetStatus moves the reservation from the status the caller observed
	// to next. The expected status is part of the WHERE clause, so a
	// concurrent transition makes the update touch zero rows instead of
	// silently overwriting it.
	SetStatus(ctx context.Context, id uuid.UUID, from, next domain.ReservationStatus) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string, actor domain.CancelActor, at time.Time) (bool, error)
	AggregateForListing(ctx context.Context, listingID uuid.UUID, window domain.DateRange) (count int, revenueCents int64, err error)
}

type reservationsRepo struct {
	pool *pgxpool.Pool
}

func NewReservationsRepo(pool *pgxpool.Pool) ReservationsRepo {
	return &reservationsRepo{pool: pool}
}

const reservationCols = `id, listing_id, guest_id, host_id,
check_in, check_out, nights, guests, total_price_cents, status,
cancelled_at, cancellation_reason, cancelled_by, created_at, updated_at`

// overlapCond is the strict half-open interval rule: back-to-back stays are
// fine, any shared night is not. Only cancelled rows free their dates; a row
// with no status still blocks, so NULL must not fall out of the comparison.
const overlapCond = `listing_id = $1
	AND (status IS NULL OR status <> 'canceled')
	AND check_in < $3
	AND check_out > $2`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID, &res.ListingID, &res.GuestID, &res.HostID,
		&res.CheckIn, &res.CheckOut, &res.Nights, &res.Guests,
		&res.TotalPriceCents, &res.Status,
		&res.CancelledAt, &res.CancellationReason, &res.CancelledBy,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationsRepo) CreateIfAvailable(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the listing row. Every booking for this listing passes through
	// here, which makes the overlap check below race-free even across
	// service instances.
	var lockedID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM listings WHERE id = $1 FOR UPDATE`, res.ListingID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var taken bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE `+overlapCond+`)`,
		res.ListingID, res.CheckIn, res.CheckOut,
	).Scan(&taken)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrUnavailable
	}

	const q = `INSERT INTO reservations (
		id, listing_id, guest_id, host_id,
		check_in, check_out, nights, guests, total_price_cents, status
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending')
	RETURNING ` + reservationCols

	created, err := scanReservation(tx.QueryRow(ctx, q,
		res.ID, res.ListingID, res.GuestID, res.HostID,
		res.CheckIn, res.CheckOut, res.Nights, res.Guests, res.TotalPriceCents,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit booking transaction: %w", err)
	}
	return created, nil
}

func (r *reservationsRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := scanReservation(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return res, err
}

func (r *reservationsRepo) HasOverlap(ctx context.Context, listingID uuid.UUID, stay domain.DateRange) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE `+overlapCond+`)`,
		listingID, stay.CheckIn, stay.CheckOut,
	).Scan(&taken)
	return taken, err
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (r *reservationsRepo) list(ctx context.Context, q string, args ...any) ([]domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

func (r *reservationsRepo) ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]domain.Reservation, error) {
	limit, offset = clampPage(limit, offset)
	const q = `SELECT ` + reservationCols + ` FROM reservations
		WHERE guest_id=$1 ORDER BY check_in ASC, id ASC LIMIT $2 OFFSET $3`
	return r.list(ctx, q, guestID, limit, offset)
}

func (r *reservationsRepo) ListByListing(ctx context.Context, listingID uuid.UUID, limit, offset int) ([]domain.Reservation, error) {
	limit, offset = clampPage(limit, offset)
	const q = `SELECT ` + reservationCols + ` FROM reservations
		WHERE listing_id=$1 ORDER BY check_in ASC, id ASC LIMIT $2 OFFSET $3`
	return r.list(ctx, q, listingID, limit, offset)
}

func (r *reservationsRepo) Search(ctx context.Context, filter domain.SearchFilter, limit, offset int) ([]domain.Reservation, error) {
	limit, offset = clampPage(limit, offset)

	q := `SELECT ` + reservationCols + ` FROM reservations WHERE 1=1`
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.GuestID != nil {
		q += ` AND guest_id=` + next(*filter.GuestID)
	}
	if filter.HostID != nil {
		q += ` AND host_id=` + next(*filter.HostID)
	}
	if filter.ListingID != nil {
		q += ` AND listing_id=` + next(*filter.ListingID)
	}
	if filter.Status != nil {
		q += ` AND status=` + next(*filter.Status)
	}
	if filter.Range != nil {
		w := filter.Range.Normalize()
		q += ` AND check_in <= ` + next(w.CheckOut) + ` AND check_out >= ` + next(w.CheckIn)
	}

	q += ` ORDER BY check_in ASC, id ASC LIMIT ` + next(limit) + ` OFFSET ` + next(offset)
	return r.list(ctx, q, args...)
}

func (r *reservationsRepo) SetStatus(ctx context.Context, id uuid.UUID, from, next domain.ReservationStatus) (bool, error) {
	const q = `UPDATE reservations SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, from, next)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// Cancel flips the row to canceled and records provenance in one statement,
// so the cancellation fields are always set together.
func (r *reservationsRepo) Cancel(ctx context.Context, id uuid.UUID, reason string, actor domain.CancelActor, at time.Time) (bool, error) {
	const q = `UPDATE reservations
		SET status='canceled', cancelled_at=$2, cancellation_reason=$3, cancelled_by=$4, updated_at=now()
		WHERE id=$1 AND status NOT IN ('canceled','completed')`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id, at, reason, actor)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// AggregateForListing counts reservations and sums revenue over the window.
// Intersection is inclusive on both bounds and rows whose status mentions a
// cancellation are skipped; a NULL status counts as live.
func (r *reservationsRepo) AggregateForListing(ctx context.Context, listingID uuid.UUID, window domain.DateRange) (int, int64, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(total_price_cents), 0)
		FROM reservations
		WHERE listing_id=$1
		  AND check_in <= $3 AND check_out >= $2
		  AND (status IS NULL OR strpos(status, 'cancel') = 0)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	w := window.Normalize()
	var count int
	var revenue int64
	err := r.pool.QueryRow(ctx, q, listingID, w.CheckIn, w.CheckOut).Scan(&count, &revenue)
	return count, revenue, err
}

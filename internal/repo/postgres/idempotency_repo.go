package postgres

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRepo deduplicates reservation creation by client-supplied key.
type IdempotencyRepo interface {
	// CheckOrCreate looks the key up; when it is already bound to a
	// reservation the bound id comes back with found=true. Otherwise, when
	// reservationID is non-nil, the binding is recorded.
	CheckOrCreate(ctx context.Context, key string, reservationID uuid.UUID) (existing uuid.UUID, found bool, err error)
	// CleanupExpired removes records older than the retention window.
	CleanupExpired(ctx context.Context) (int64, error)
}

type idempotencyRepo struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepo(pool *pgxpool.Pool) IdempotencyRepo {
	return &idempotencyRepo{pool: pool}
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", sum)
}

func (r *idempotencyRepo) CheckOrCreate(ctx context.Context, key string, reservationID uuid.UUID) (uuid.UUID, bool, error) {
	keyHash := hashKey(key)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var existing uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT reservation_id FROM idempotency_keys WHERE key_hash=$1`, keyHash,
	).Scan(&existing)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, err
	}

	if reservationID == uuid.Nil {
		return uuid.Nil, false, nil
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO idempotency_keys (key_hash, reservation_id, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key_hash) DO NOTHING`,
		keyHash, reservationID,
	)
	return uuid.Nil, false, err
}

func (r *idempotencyRepo) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE created_at < now() - interval '24 hours'`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

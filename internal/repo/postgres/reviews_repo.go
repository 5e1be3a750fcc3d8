package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewsRepo reads the ratings the review subsystem writes. Consumed only
// by the metrics aggregator.
type ReviewsRepo interface {
	AverageRating(ctx context.Context, listingID uuid.UUID) (float64, error)
}

type reviewsRepo struct {
	pool *pgxpool.Pool
}

func NewReviewsRepo(pool *pgxpool.Pool) ReviewsRepo {
	return &reviewsRepo{pool: pool}
}

func (r *reviewsRepo) AverageRating(ctx context.Context, listingID uuid.UUID) (float64, error) {
	const q = `SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE listing_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var avg float64
	err := r.pool.QueryRow(ctx, q, listingID).Scan(&avg)
	return avg, err
}

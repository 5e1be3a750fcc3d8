package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/harborstay/reservations/internal/domain"
	"github.com/harborstay/reservations/internal/repo/postgres"
	"github.com/harborstay/reservations/pkg/logger"
)

type MetricsService interface {
	GetListingMetrics(ctx context.Context, listingID uuid.UUID, window domain.DateRange) (*domain.ListingMetrics, error)
}

type metricsService struct {
	reservations postgres.ReservationsRepo
	listings     postgres.ListingsRepo
	reviews      postgres.ReviewsRepo
	cache        *redis.Client
	cacheTTL     time.Duration
}

// NewMetricsService builds the aggregator. cache may be nil, in which case
// every request hits the database. Metrics are read-only, so a short cache
// TTL only bounds report staleness and never affects booking correctness.
func NewMetricsService(
	reservations postgres.ReservationsRepo,
	listings postgres.ListingsRepo,
	reviews postgres.ReviewsRepo,
	cache *redis.Client,
	cacheTTL time.Duration,
) MetricsService {
	return &metricsService{
		reservations: reservations,
		listings:     listings,
		reviews:      reviews,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

func metricsCacheKey(listingID uuid.UUID, window domain.DateRange) string {
	w := window.Normalize()
	return fmt.Sprintf("metrics:%s:%s:%s",
		listingID, w.CheckIn.Format("2006-01-02"), w.CheckOut.Format("2006-01-02"))
}

func (s *metricsService) GetListingMetrics(ctx context.Context, listingID uuid.UUID, window domain.DateRange) (*domain.ListingMetrics, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.listings.ExistsByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listing: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("listing %s: %w", listingID, domain.ErrNotFound)
	}

	key := metricsCacheKey(listingID, window)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached domain.ListingMetrics
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	count, revenue, err := s.reservations.AggregateForListing(ctx, listingID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reservations: %w", err)
	}

	// Ratings cover the listing's whole history, not just the window.
	rating, err := s.reviews.AverageRating(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to read review ratings: %w", err)
	}

	metrics := &domain.ListingMetrics{
		TotalReservations: count,
		AverageRating:     rating,
		TotalRevenueCents: revenue,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(metrics); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				logger.WarnContext(ctx, "Failed to cache listing metrics", "error", err, "listing_id", listingID)
			}
		}
	}

	return metrics, nil
}

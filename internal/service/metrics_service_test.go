package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborstay/reservations/internal/domain"
	"github.com/harborstay/reservations/internal/service"
)

func newMetricsEnv(t *testing.T) (*mockReservationsRepo, *mockListingsRepo, *mockReviewsRepo, service.MetricsService, uuid.UUID) {
	t.Helper()

	reservations := newMockReservationsRepo()
	listings := newMockListingsRepo()
	reviews := newMockReviewsRepo()

	listingID := uuid.New()
	listings.listings[listingID] = &domain.Listing{
		ID:               listingID,
		HostID:           uuid.New(),
		NightlyRateCents: 100000,
		MaxGuests:        4,
	}

	svc := service.NewMetricsService(reservations, listings, reviews, nil, time.Minute)
	return reservations, listings, reviews, svc, listingID
}

func seedReservation(repo *mockReservationsRepo, listingID uuid.UUID, daysAhead, nights int, priceCents int64, status domain.ReservationStatus) *domain.Reservation {
	checkIn := domain.Day(time.Now()).AddDate(0, 0, daysAhead)
	res := &domain.Reservation{
		ID:              uuid.New(),
		ListingID:       listingID,
		GuestID:         uuid.New(),
		HostID:          uuid.New(),
		CheckIn:         checkIn,
		CheckOut:        checkIn.AddDate(0, 0, nights),
		Nights:          nights,
		Guests:          2,
		TotalPriceCents: priceCents,
		Status:          status,
	}
	repo.add(res)
	return res
}

func TestGetListingMetrics(t *testing.T) {
	reservations, _, reviews, svc, listingID := newMetricsEnv(t)
	ctx := context.Background()

	seedReservation(reservations, listingID, 10, 4, 400000, domain.ReservationConfirmed)
	seedReservation(reservations, listingID, 20, 2, 200000, domain.ReservationPending)
	reviews.ratings[listingID] = 4.5

	window := domain.DateRange{
		CheckIn:  domain.Day(time.Now()),
		CheckOut: domain.Day(time.Now()).AddDate(0, 0, 60),
	}
	got, err := svc.GetListingMetrics(ctx, listingID, window)
	if err != nil {
		t.Fatalf("GetListingMetrics: %v", err)
	}
	if got.TotalReservations != 2 {
		t.Errorf("count = %d, want 2", got.TotalReservations)
	}
	if got.TotalRevenueCents != 600000 {
		t.Errorf("revenue = %d, want 600000", got.TotalRevenueCents)
	}
	if got.AverageRating != 4.5 {
		t.Errorf("rating = %v, want 4.5", got.AverageRating)
	}
}

func TestGetListingMetricsExcludesCancelled(t *testing.T) {
	reservations, _, _, svc, listingID := newMetricsEnv(t)
	ctx := context.Background()

	seedReservation(reservations, listingID, 10, 4, 400000, domain.ReservationConfirmed)

	window := domain.DateRange{
		CheckIn:  domain.Day(time.Now()),
		CheckOut: domain.Day(time.Now()).AddDate(0, 0, 60),
	}
	before, err := svc.GetListingMetrics(ctx, listingID, window)
	if err != nil {
		t.Fatalf("GetListingMetrics: %v", err)
	}

	// Cancelled stays never move the totals, whatever the cancel label.
	seedReservation(reservations, listingID, 15, 3, 300000, domain.ReservationCanceled)
	seedReservation(reservations, listingID, 25, 3, 300000, domain.ReservationStatus("cancelled_by_host"))

	after, err := svc.GetListingMetrics(ctx, listingID, window)
	if err != nil {
		t.Fatalf("GetListingMetrics: %v", err)
	}
	if after.TotalReservations != before.TotalReservations || after.TotalRevenueCents != before.TotalRevenueCents {
		t.Errorf("totals moved after cancellations: %+v -> %+v", before, after)
	}
}

func TestGetListingMetricsUnsetStatusCounts(t *testing.T) {
	reservations, _, _, svc, listingID := newMetricsEnv(t)
	ctx := context.Background()

	// Legacy rows with no status still count.
	seedReservation(reservations, listingID, 10, 4, 400000, domain.ReservationStatus(""))

	window := domain.DateRange{
		CheckIn:  domain.Day(time.Now()),
		CheckOut: domain.Day(time.Now()).AddDate(0, 0, 60),
	}
	got, err := svc.GetListingMetrics(ctx, listingID, window)
	if err != nil {
		t.Fatalf("GetListingMetrics: %v", err)
	}
	if got.TotalReservations != 1 || got.TotalRevenueCents != 400000 {
		t.Errorf("got %+v, want 1 reservation and 400000 revenue", got)
	}
}

func TestGetListingMetricsInclusiveWindow(t *testing.T) {
	reservations, _, _, svc, listingID := newMetricsEnv(t)
	ctx := context.Background()

	res := seedReservation(reservations, listingID, 10, 4, 400000, domain.ReservationConfirmed)

	tests := []struct {
		name      string
		window    domain.DateRange
		wantCount int
	}{
		{
			// Window ends on the check-in day; the metrics rule is
			// inclusive even though stays themselves are half-open.
			name:      "window touching check-in",
			window:    domain.DateRange{CheckIn: res.CheckIn.AddDate(0, 0, -5), CheckOut: res.CheckIn},
			wantCount: 1,
		},
		{
			name:      "window touching check-out",
			window:    domain.DateRange{CheckIn: res.CheckOut, CheckOut: res.CheckOut.AddDate(0, 0, 5)},
			wantCount: 1,
		},
		{
			name:      "window before the stay",
			window:    domain.DateRange{CheckIn: res.CheckIn.AddDate(0, 0, -10), CheckOut: res.CheckIn.AddDate(0, 0, -1)},
			wantCount: 0,
		},
		{
			name:      "window after the stay",
			window:    domain.DateRange{CheckIn: res.CheckOut.AddDate(0, 0, 1), CheckOut: res.CheckOut.AddDate(0, 0, 10)},
			wantCount: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetListingMetrics(ctx, listingID, tt.window)
			if err != nil {
				t.Fatalf("GetListingMetrics: %v", err)
			}
			if got.TotalReservations != tt.wantCount {
				t.Errorf("count = %d, want %d", got.TotalReservations, tt.wantCount)
			}
		})
	}
}

func TestGetListingMetricsErrors(t *testing.T) {
	_, _, _, svc, _ := newMetricsEnv(t)
	ctx := context.Background()

	window := domain.DateRange{
		CheckIn:  domain.Day(time.Now()),
		CheckOut: domain.Day(time.Now()).AddDate(0, 0, 30),
	}
	if _, err := svc.GetListingMetrics(ctx, uuid.New(), window); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown listing error = %v, want ErrNotFound", err)
	}

	_, _, _, svc2, listingID := newMetricsEnv(t)
	inverted := domain.DateRange{CheckIn: window.CheckOut, CheckOut: window.CheckIn}
	if _, err := svc2.GetListingMetrics(ctx, listingID, inverted); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("inverted window error = %v, want ErrInvalidRequest", err)
	}
}

func TestGetListingMetricsNoReviews(t *testing.T) {
	reservations, _, _, svc, listingID := newMetricsEnv(t)
	ctx := context.Background()

	seedReservation(reservations, listingID, 10, 4, 400000, domain.ReservationConfirmed)

	window := domain.DateRange{
		CheckIn:  domain.Day(time.Now()),
		CheckOut: domain.Day(time.Now()).AddDate(0, 0, 30),
	}
	got, err := svc.GetListingMetrics(ctx, listingID, window)
	if err != nil {
		t.Fatalf("GetListingMetrics: %v", err)
	}
	if got.AverageRating != 0 {
		t.Errorf("rating = %v, want 0 with no reviews", got.AverageRating)
	}
}

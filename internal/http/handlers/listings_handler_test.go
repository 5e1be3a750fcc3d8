package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/harborstay/reservations/internal/domain"
	"github.com/harborstay/reservations/internal/http/handlers"
)

type stubMetricsService struct {
	fn func(ctx context.Context, listingID uuid.UUID, window domain.DateRange) (*domain.ListingMetrics, error)
}

func (s *stubMetricsService) GetListingMetrics(ctx context.Context, listingID uuid.UUID, window domain.DateRange) (*domain.ListingMetrics, error) {
	return s.fn(ctx, listingID, window)
}

func TestAvailabilityHandler(t *testing.T) {
	listingID := uuid.New()

	svc := &stubReservationService{
		isAvailableFn: func(_ context.Context, id uuid.UUID, stay domain.DateRange) (bool, error) {
			if id != listingID {
				return false, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
			}
			return stay.Nights() <= 7, nil
		},
	}
	h := handlers.NewListingsHandler(svc, nil)

	url := "/" + listingID.String() + "/availability?check_in=2027-06-01&check_out=2027-06-05"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
	var got struct {
		Available bool   `json:"available"`
		CheckIn   string `json:"check_in"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.Available {
		t.Error("available = false, want true")
	}
	if got.CheckIn != "2027-06-01" {
		t.Errorf("check_in = %q, want 2027-06-01", got.CheckIn)
	}

	// Missing dates are a client error.
	req = httptest.NewRequest(http.MethodGet, "/"+listingID.String()+"/availability", nil)
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing dates status = %d, want 400", rec.Code)
	}

	// Unknown listing surfaces the service's not-found.
	req = httptest.NewRequest(http.MethodGet,
		"/"+uuid.NewString()+"/availability?check_in=2027-06-01&check_out=2027-06-05", nil)
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown listing status = %d, want 404", rec.Code)
	}
}

func TestQuoteHandler(t *testing.T) {
	listingID := uuid.New()

	svc := &stubReservationService{
		quoteFn: func(_ context.Context, id uuid.UUID, stay domain.DateRange, guests int) (int64, error) {
			return 100000 * int64(stay.Nights()), nil
		},
	}
	h := handlers.NewListingsHandler(svc, nil)

	url := "/" + listingID.String() + "/quote?check_in=2027-06-01&check_out=2027-06-05&guests=2"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
	var got struct {
		Nights          int   `json:"nights"`
		TotalPriceCents int64 `json:"total_price_cents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Nights != 4 || got.TotalPriceCents != 400000 {
		t.Errorf("got %d nights for %d cents, want 4 nights for 400000", got.Nights, got.TotalPriceCents)
	}

	// Guest count must be positive when supplied.
	req = httptest.NewRequest(http.MethodGet,
		"/"+listingID.String()+"/quote?check_in=2027-06-01&check_out=2027-06-05&guests=0", nil)
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero guests status = %d, want 400", rec.Code)
	}
}

func TestListingMetricsHandler(t *testing.T) {
	listingID := uuid.New()

	metrics := &stubMetricsService{
		fn: func(_ context.Context, id uuid.UUID, window domain.DateRange) (*domain.ListingMetrics, error) {
			if id != listingID {
				return nil, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
			}
			return &domain.ListingMetrics{
				TotalReservations: 3,
				AverageRating:     4.5,
				TotalRevenueCents: 900000,
			}, nil
		},
	}
	h := handlers.NewListingsHandler(&stubReservationService{}, metrics)

	url := "/" + listingID.String() + "/metrics?check_in=2027-06-01&check_out=2027-06-30"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
	var got domain.ListingMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.TotalReservations != 3 || got.TotalRevenueCents != 900000 {
		t.Errorf("metrics = %+v", got)
	}

	// A metrics request without a window has nothing to aggregate over.
	req = httptest.NewRequest(http.MethodGet, "/"+listingID.String()+"/metrics", nil)
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing window status = %d, want 404", rec.Code)
	}
}

package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborstay/reservations/internal/domain"
)

// ---------- Mocks ----------

type mockReservationsRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*domain.Reservation
}

func newMockReservationsRepo() *mockReservationsRepo {
	return &mockReservationsRepo{
		reservations: make(map[uuid.UUID]*domain.Reservation),
	}
}

func (m *mockReservationsRepo) overlaps(listingID uuid.UUID, stay domain.DateRange) bool {
	for _, res := range m.reservations {
		if res.ListingID != listingID || res.Status == domain.ReservationCanceled {
			continue
		}
		if res.Range().Overlaps(stay) {
			return true
		}
	}
	return false
}

func (m *mockReservationsRepo) CreateIfAvailable(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.overlaps(res.ListingID, res.Range()) {
		return nil, domain.ErrUnavailable
	}

	stored := *res
	stored.Status = domain.ReservationPending
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.reservations[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (m *mockReservationsRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	out := *res
	return &out, nil
}

func (m *mockReservationsRepo) HasOverlap(_ context.Context, listingID uuid.UUID, stay domain.DateRange) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlaps(listingID, stay), nil
}

func (m *mockReservationsRepo) ListByGuest(_ context.Context, guestID uuid.UUID, limit, offset int) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Reservation
	for _, res := range m.reservations {
		if res.GuestID == guestID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *mockReservationsRepo) ListByListing(_ context.Context, listingID uuid.UUID, limit, offset int) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Reservation
	for _, res := range m.reservations {
		if res.ListingID == listingID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *mockReservationsRepo) Search(_ context.Context, filter domain.SearchFilter, limit, offset int) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Reservation
	for _, res := range m.reservations {
		if filter.GuestID != nil && res.GuestID != *filter.GuestID {
			continue
		}
		if filter.HostID != nil && res.HostID != *filter.HostID {
			continue
		}
		if filter.ListingID != nil && res.ListingID != *filter.ListingID {
			continue
		}
		if filter.Status != nil && res.Status != *filter.Status {
			continue
		}
		if filter.Range != nil && !res.Range().Intersects(*filter.Range) {
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

func (m *mockReservationsRepo) SetStatus(_ context.Context, id uuid.UUID, from, next domain.ReservationStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[id]
	if !ok || res.Status != from {
		return false, nil
	}
	res.Status = next
	res.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockReservationsRepo) Cancel(_ context.Context, id uuid.UUID, reason string, actor domain.CancelActor, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[id]
	if !ok || res.Status == domain.ReservationCanceled || res.Status == domain.ReservationCompleted {
		return false, nil
	}
	res.Status = domain.ReservationCanceled
	res.CancelledAt = &at
	res.CancellationReason = &reason
	res.CancelledBy = &actor
	res.UpdatedAt = time.Now()
	return true, nil
}

func (m *mockReservationsRepo) AggregateForListing(_ context.Context, listingID uuid.UUID, window domain.DateRange) (int, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int
	var revenue int64
	for _, res := range m.reservations {
		if res.ListingID != listingID {
			continue
		}
		// Mirrors the SQL: inclusive intersection, skip any status
		// mentioning a cancellation, keep unset statuses.
		if strings.Contains(string(res.Status), "cancel") {
			continue
		}
		if !res.Range().Intersects(window) {
			continue
		}
		count++
		revenue += res.TotalPriceCents
	}
	return count, revenue, nil
}

// add stores a reservation directly, bypassing validation.
func (m *mockReservationsRepo) add(res *domain.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[res.ID] = res
}

type mockListingsRepo struct {
	listings map[uuid.UUID]*domain.Listing
}

func newMockListingsRepo() *mockListingsRepo {
	return &mockListingsRepo{listings: make(map[uuid.UUID]*domain.Listing)}
}

func (m *mockListingsRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	l, ok := m.listings[id]
	if !ok {
		return nil, nil
	}
	out := *l
	return &out, nil
}

func (m *mockListingsRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.listings[id]
	return ok, nil
}

type mockUsersRepo struct {
	users map[uuid.UUID]*domain.User
}

func newMockUsersRepo() *mockUsersRepo {
	return &mockUsersRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUsersRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (m *mockUsersRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

type mockIdempotencyRepo struct {
	records map[string]uuid.UUID
}

func newMockIdempotencyRepo() *mockIdempotencyRepo {
	return &mockIdempotencyRepo{records: make(map[string]uuid.UUID)}
}

func (m *mockIdempotencyRepo) CheckOrCreate(_ context.Context, key string, reservationID uuid.UUID) (uuid.UUID, bool, error) {
	if existing, ok := m.records[key]; ok {
		return existing, true, nil
	}
	if reservationID != uuid.Nil {
		m.records[key] = reservationID
	}
	return uuid.Nil, false, nil
}

func (m *mockIdempotencyRepo) CleanupExpired(context.Context) (int64, error) {
	return 0, nil
}

type mockReviewsRepo struct {
	ratings map[uuid.UUID]float64
}

func newMockReviewsRepo() *mockReviewsRepo {
	return &mockReviewsRepo{ratings: make(map[uuid.UUID]float64)}
}

func (m *mockReviewsRepo) AverageRating(_ context.Context, listingID uuid.UUID) (float64, error) {
	return m.ratings[listingID], nil
}

type mockPaymentsRepo struct {
	payments map[uuid.UUID]*domain.Payment
}

func newMockPaymentsRepo() *mockPaymentsRepo {
	return &mockPaymentsRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (m *mockPaymentsRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (m *mockPaymentsRepo) GetByExternalRef(_ context.Context, ref string) (*domain.Payment, error) {
	for _, p := range m.payments {
		if p.ExternalRef == ref {
			out := *p
			return &out, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentsRepo) MarkCaptured(_ context.Context, id uuid.UUID, externalRef string) (bool, error) {
	p, ok := m.payments[id]
	if !ok || p.Status == domain.PaymentCaptured {
		return false, nil
	}
	p.Status = domain.PaymentCaptured
	if externalRef != "" {
		p.ExternalRef = externalRef
	}
	return true, nil
}

type mockEventBus struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockEventBus) Publish(_ context.Context, subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockEventBus) Close() error { return nil }

func (m *mockEventBus) published(subject string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborstay/reservations/internal/domain"
	"github.com/harborstay/reservations/internal/repo/postgres"
	"github.com/harborstay/reservations/pkg/config"
	"github.com/harborstay/reservations/pkg/events"
	"github.com/harborstay/reservations/pkg/logger"
)

type ReservationService interface {
	Create(ctx context.Context, req *domain.CreateReservationReq, idempotencyKey string) (*domain.Reservation, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]domain.Reservation, error)
	ListByListing(ctx context.Context, listingID uuid.UUID, limit, offset int) ([]domain.Reservation, error)
	Search(ctx context.Context, filter domain.SearchFilter, limit, offset int) ([]domain.Reservation, error)
	IsAvailable(ctx context.Context, listingID uuid.UUID, stay domain.DateRange) (bool, error)
	QuotePrice(ctx context.Context, listingID uuid.UUID, stay domain.DateRange, guests int) (int64, error)
	Cancel(ctx context.Context, reservationID, actingUserID uuid.UUID, reason string) error
	UpdateStatus(ctx context.Context, reservationID uuid.UUID, next domain.ReservationStatus, actingHostID uuid.UUID) error
}

type reservationService struct {
	reservations postgres.ReservationsRepo
	listings     postgres.ListingsRepo
	users        postgres.UsersRepo
	idempotency  postgres.IdempotencyRepo
	eventBus     events.Publisher
	config       *config.Config
}

func NewReservationService(
	reservations postgres.ReservationsRepo,
	listings postgres.ListingsRepo,
	users postgres.UsersRepo,
	idempotency postgres.IdempotencyRepo,
	eventBus events.Publisher,
	config *config.Config,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		listings:     listings,
		users:        users,
		idempotency:  idempotency,
		eventBus:     eventBus,
		config:       config,
	}
}

// Create validates a booking request and persists it as a pending
// reservation. Checks run cheapest-first and the first failure wins; the
// availability check itself happens inside the storage transaction so that
// two concurrent requests cannot both pass it.
func (s *reservationService) Create(ctx context.Context, req *domain.CreateReservationReq, idempotencyKey string) (*domain.Reservation, error) {
	guest, err := s.users.FindByID(ctx, req.GuestID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guest: %w", err)
	}
	if guest == nil {
		return nil, fmt.Errorf("guest %s: %w", req.GuestID, domain.ErrNotFound)
	}
	if guest.Role != domain.RoleGuest {
		return nil, fmt.Errorf("user %s is a %s: %w", guest.ID, guest.Role, domain.ErrRoleViolation)
	}

	listing, err := s.listings.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listing: %w", err)
	}
	if listing == nil || listing.Deleted {
		return nil, fmt.Errorf("listing %s: %w", req.ListingID, domain.ErrNotFound)
	}

	if req.GuestID == listing.HostID {
		return nil, fmt.Errorf("hosts cannot book their own listing: %w", domain.ErrRoleViolation)
	}

	stay := domain.DateRange{CheckIn: req.CheckIn, CheckOut: req.CheckOut}.Normalize()
	if stay.CheckIn.Before(domain.Day(time.Now())) {
		return nil, fmt.Errorf("check-in is in the past: %w", domain.ErrInvalidRequest)
	}
	nights := stay.Nights()
	if nights < 1 {
		return nil, fmt.Errorf("stay must cover at least one night: %w", domain.ErrInvalidRequest)
	}
	if req.Guests < 1 {
		return nil, fmt.Errorf("guest count must be positive: %w", domain.ErrInvalidRequest)
	}
	if req.Guests > listing.MaxGuests {
		return nil, fmt.Errorf("%d guests over listing capacity %d: %w", req.Guests, listing.MaxGuests, domain.ErrCapacityExceeded)
	}

	if idempotencyKey != "" {
		existingID, found, err := s.idempotency.CheckOrCreate(ctx, idempotencyKey, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if found {
			existing, err := s.reservations.GetByID(ctx, existingID)
			if err != nil {
				return nil, fmt.Errorf("failed to replay reservation: %w", err)
			}
			if existing == nil {
				return nil, fmt.Errorf("reservation %s bound to idempotency key: %w", existingID, domain.ErrNotFound)
			}
			return existing, nil
		}
	}

	// Price is computed once and frozen on the row; later rate changes
	// never touch existing reservations.
	res := &domain.Reservation{
		ID:              uuid.New(),
		ListingID:       listing.ID,
		GuestID:         guest.ID,
		HostID:          listing.HostID,
		CheckIn:         stay.CheckIn,
		CheckOut:        stay.CheckOut,
		Nights:          nights,
		Guests:          req.Guests,
		TotalPriceCents: listing.NightlyRateCents * int64(nights),
	}

	created, err := s.reservations.CreateIfAvailable(ctx, res)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		if _, _, err := s.idempotency.CheckOrCreate(ctx, idempotencyKey, created.ID); err != nil {
			logger.ErrorContext(ctx, "Failed to store idempotency record", "error", err, "reservation_id", created.ID)
		}
	}

	event := events.ReservationCreatedEvent{
		ReservationID:   created.ID,
		ListingID:       created.ListingID,
		GuestID:         created.GuestID,
		HostID:          created.HostID,
		CheckIn:         created.CheckIn,
		CheckOut:        created.CheckOut,
		Guests:          created.Guests,
		TotalPriceCents: created.TotalPriceCents,
		CreatedAt:       created.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.ReservationCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reservation created event", "error", err, "reservation_id", created.ID)
	}

	return created, nil
}

func (s *reservationService) Get(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
	}
	return res, nil
}

func (s *reservationService) ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]domain.Reservation, error) {
	return s.reservations.ListByGuest(ctx, guestID, limit, offset)
}

func (s *reservationService) ListByListing(ctx context.Context, listingID uuid.UUID, limit, offset int) ([]domain.Reservation, error) {
	return s.reservations.ListByListing(ctx, listingID, limit, offset)
}

func (s *reservationService) Search(ctx context.Context, filter domain.SearchFilter, limit, offset int) ([]domain.Reservation, error) {
	if filter.Range != nil {
		if err := filter.Range.Validate(); err != nil {
			return nil, err
		}
	}
	return s.reservations.Search(ctx, filter, limit, offset)
}

// IsAvailable answers against current data, not a snapshot. The result is
// advisory for callers; the booking transaction re-checks under lock.
func (s *reservationService) IsAvailable(ctx context.Context, listingID uuid.UUID, stay domain.DateRange) (bool, error) {
	exists, err := s.listings.ExistsByID(ctx, listingID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve listing: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("listing %s: %w", listingID, domain.ErrNotFound)
	}
	if err := stay.Validate(); err != nil {
		return false, err
	}

	taken, err := s.reservations.HasOverlap(ctx, listingID, stay)
	if err != nil {
		return false, fmt.Errorf("availability lookup failed: %w", err)
	}
	return !taken, nil
}

// QuotePrice multiplies the listing's nightly rate by the night count.
// Amounts are integer cents, so the arithmetic is exact. Guest count does
// not influence price.
func (s *reservationService) QuotePrice(ctx context.Context, listingID uuid.UUID, stay domain.DateRange, guests int) (int64, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve listing: %w", err)
	}
	if listing == nil {
		return 0, fmt.Errorf("listing %s: %w", listingID, domain.ErrNotFound)
	}

	nights := stay.Nights()
	if nights < 1 {
		return 0, fmt.Errorf("stay must cover at least one night: %w", domain.ErrInvalidRequest)
	}
	return listing.NightlyRateCents * int64(nights), nil
}

// Cancel resolves the acting user to a side of the booking and applies the
// cancellation policy: guests must be outside the cutoff window measured to
// the start of the check-in day, hosts may cancel any time before the stay
// completes. Nobody else may cancel.
func (s *reservationService) Cancel(ctx context.Context, reservationID, actingUserID uuid.UUID, reason string) error {
	res, err := s.Get(ctx, reservationID)
	if err != nil {
		return err
	}

	var actor domain.CancelActor
	switch actingUserID {
	case res.GuestID:
		actor = domain.CancelledByGuest
	case res.HostID:
		actor = domain.CancelledByHost
	default:
		return fmt.Errorf("user %s is neither guest nor host of reservation %s: %w",
			actingUserID, reservationID, domain.ErrPermissionDenied)
	}

	switch res.Status {
	case domain.ReservationCanceled:
		return fmt.Errorf("already cancelled: %w", domain.ErrStateConflict)
	case domain.ReservationCompleted:
		return fmt.Errorf("cannot cancel a completed stay: %w", domain.ErrStateConflict)
	}

	if actor == domain.CancelledByGuest {
		if !res.GuestCancelWindowOpen(time.Now(), s.config.Booking.GuestCancelCutoff) {
			return fmt.Errorf("check-in is less than %s away: %w",
				s.config.Booking.GuestCancelCutoff, domain.ErrLateCancellation)
		}
	}

	now := time.Now()
	ok, err := s.reservations.Cancel(ctx, reservationID, reason, actor, now)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	if !ok {
		// Lost a race against another transition.
		return fmt.Errorf("reservation %s changed state concurrently: %w", reservationID, domain.ErrStateConflict)
	}

	event := events.ReservationCanceledEvent{
		ReservationID: res.ID,
		ListingID:     res.ListingID,
		CancelledBy:   string(actor),
		Reason:        reason,
		CanceledAt:    now,
	}
	if err := s.eventBus.Publish(ctx, events.ReservationCanceled, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reservation canceled event", "error", err, "reservation_id", res.ID)
	}

	return nil
}

// UpdateStatus lets the owning host drive the lifecycle. Transition
// legality lives on the status type so the table is testable on its own.
func (s *reservationService) UpdateStatus(ctx context.Context, reservationID uuid.UUID, next domain.ReservationStatus, actingHostID uuid.UUID) error {
	res, err := s.Get(ctx, reservationID)
	if err != nil {
		return err
	}

	if actingHostID != res.HostID {
		return fmt.Errorf("only the owning host may update reservation status: %w", domain.ErrPermissionDenied)
	}

	if res.Status.Terminal() {
		return fmt.Errorf("reservation is %s: %w", res.Status, domain.ErrStateConflict)
	}
	if !res.Status.CanTransitionTo(next) {
		return fmt.Errorf("cannot move %s to %s: %w", res.Status, next, domain.ErrStateConflict)
	}

	// The store only applies the write if the row is still in the status
	// read above; a transition landing in between touches zero rows.
	ok, err := s.reservations.SetStatus(ctx, reservationID, res.Status, next)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	if !ok {
		return fmt.Errorf("reservation %s changed state concurrently: %w", reservationID, domain.ErrStateConflict)
	}

	subject := events.ReservationConfirmed
	switch next {
	case domain.ReservationCompleted:
		subject = events.ReservationCompleted
	case domain.ReservationCanceled:
		subject = events.ReservationCanceled
	}
	event := events.ReservationStatusEvent{
		ReservationID: res.ID,
		ListingID:     res.ListingID,
		Status:        string(next),
		UpdatedAt:     time.Now(),
	}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reservation status event", "error", err, "reservation_id", res.ID)
	}

	return nil
}

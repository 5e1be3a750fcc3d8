package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCanceled  ReservationStatus = "canceled"
)

func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch ReservationStatus(s) {
	case ReservationPending, ReservationConfirmed, ReservationCompleted, ReservationCanceled:
		return ReservationStatus(s), true
	default:
		return "", false
	}
}

// Terminal reports whether no further transition is permitted.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCanceled
}

// CanTransitionTo encodes the full lifecycle table:
// pending -> confirmed | canceled, confirmed -> completed | canceled.
// Completed and canceled are terminal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case ReservationPending:
		return next == ReservationConfirmed || next == ReservationCanceled
	case ReservationConfirmed:
		return next == ReservationCompleted || next == ReservationCanceled
	default:
		return false
	}
}

// CancelActor records which side of the booking cancelled.
type CancelActor string

const (
	CancelledByGuest CancelActor = "guest"
	CancelledByHost  CancelActor = "host"
)

type Reservation struct {
	ID                 uuid.UUID          `json:"id"`
	ListingID          uuid.UUID          `json:"listing_id"`
	GuestID            uuid.UUID          `json:"guest_id"`
	HostID             uuid.UUID          `json:"host_id"`
	CheckIn            time.Time          `json:"check_in"`
	CheckOut           time.Time          `json:"check_out"`
	Nights             int                `json:"nights"`
	Guests             int                `json:"guests"`
	TotalPriceCents    int64              `json:"total_price_cents"`
	Status             ReservationStatus  `json:"status"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
	CancellationReason *string            `json:"cancellation_reason,omitempty"`
	CancelledBy        *CancelActor       `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Range returns the stay interval.
func (r *Reservation) Range() DateRange {
	return DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// GuestCancelWindowOpen reports whether a guest may still cancel at the
// given instant. The cutoff is measured against the start of the check-in
// day, not the end of the stay.
func (r *Reservation) GuestCancelWindowOpen(now time.Time, cutoff time.Duration) bool {
	return Day(r.CheckIn).Sub(now) >= cutoff
}

type CreateReservationReq struct {
	GuestID   uuid.UUID `json:"guest_id"`
	ListingID uuid.UUID `json:"listing_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Guests    int       `json:"guests"`
}

// SearchFilter narrows reservation searches. Zero-valued fields are not
// applied. Results order by check-in ascending unless callers say otherwise.
type SearchFilter struct {
	GuestID   *uuid.UUID
	HostID    *uuid.UUID
	ListingID *uuid.UUID
	Status    *ReservationStatus
	Range     *DateRange
}

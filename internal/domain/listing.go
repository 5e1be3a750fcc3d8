package domain

import "github.com/google/uuid"

// Listing is the bookable lodging unit. The reservation core only ever
// reads it: owner, rate and capacity feed validation and pricing.
type Listing struct {
	ID               uuid.UUID `json:"id"`
	HostID           uuid.UUID `json:"host_id"`
	NightlyRateCents int64     `json:"nightly_rate_cents"`
	MaxGuests        int       `json:"max_guests"`
	Deleted          bool      `json:"deleted"`
}

// ListingMetrics is the per-listing report over a date window. Revenue and
// count cover non-cancelled reservations intersecting the window; the
// average rating comes from reviews and ignores the window.
type ListingMetrics struct {
	TotalReservations int     `json:"total_reservations"`
	AverageRating     float64 `json:"average_rating"`
	TotalRevenueCents int64   `json:"total_revenue_cents"`
}

package domain

import "time"

// DateRange is a pair of calendar dates. Stays use half-open semantics: a
// reservation occupies [CheckIn, CheckOut), so a stay may check in on the
// same day another checks out.
type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Normalize returns the range with both endpoints truncated to dates.
func (r DateRange) Normalize() DateRange {
	return DateRange{CheckIn: Day(r.CheckIn), CheckOut: Day(r.CheckOut)}
}

// Nights counts whole nights between check-in and check-out.
func (r DateRange) Nights() int {
	n := r.Normalize()
	return int(n.CheckOut.Sub(n.CheckIn) / (24 * time.Hour))
}

// Overlaps reports strict interval overlap: back-to-back stays, where one
// ends exactly when the other begins, do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	a, b := r.Normalize(), other.Normalize()
	return a.CheckIn.Before(b.CheckOut) && a.CheckOut.After(b.CheckIn)
}

// Intersects reports inclusive-bounds intersection, the rule the metrics
// window uses: touching endpoints count.
func (r DateRange) Intersects(other DateRange) bool {
	a, b := r.Normalize(), other.Normalize()
	return !a.CheckIn.After(b.CheckOut) && !a.CheckOut.Before(b.CheckIn)
}

// Validate rejects inverted ranges. Reservation creation additionally
// requires at least one night and a check-in on or after today.
func (r DateRange) Validate() error {
	n := r.Normalize()
	if n.CheckOut.Before(n.CheckIn) {
		return ErrInvalidRequest
	}
	return nil
}

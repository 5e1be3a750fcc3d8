package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRange_Nights(t *testing.T) {
	tests := []struct {
		name string
		in   DateRange
		want int
	}{
		{"four nights", DateRange{date(2027, 6, 1), date(2027, 6, 5)}, 4},
		{"one night", DateRange{date(2027, 6, 1), date(2027, 6, 2)}, 1},
		{"zero nights", DateRange{date(2027, 6, 1), date(2027, 6, 1)}, 0},
		{"inverted", DateRange{date(2027, 6, 5), date(2027, 6, 1)}, -4},
		{"ignores time of day", DateRange{
			time.Date(2027, 6, 1, 23, 30, 0, 0, time.UTC),
			time.Date(2027, 6, 5, 0, 15, 0, 0, time.UTC),
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Nights(); got != tt.want {
				t.Fatalf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDateRange_Overlaps(t *testing.T) {
	base := DateRange{date(2027, 6, 1), date(2027, 6, 5)}

	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"identical", DateRange{date(2027, 6, 1), date(2027, 6, 5)}, true},
		{"contained", DateRange{date(2027, 6, 2), date(2027, 6, 4)}, true},
		{"straddles end", DateRange{date(2027, 6, 3), date(2027, 6, 6)}, true},
		{"straddles start", DateRange{date(2027, 5, 30), date(2027, 6, 2)}, true},
		{"covers", DateRange{date(2027, 5, 30), date(2027, 6, 10)}, true},
		{"one shared night", DateRange{date(2027, 6, 4), date(2027, 6, 8)}, true},
		{"back to back after", DateRange{date(2027, 6, 5), date(2027, 6, 8)}, false},
		{"back to back before", DateRange{date(2027, 5, 28), date(2027, 6, 1)}, false},
		{"disjoint", DateRange{date(2027, 7, 1), date(2027, 7, 5)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Fatalf("Overlaps(%v) = %v, want %v", tt.other, got, tt.want)
			}
			// The relation is symmetric.
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Fatalf("reverse Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateRange_Intersects_InclusiveBounds(t *testing.T) {
	window := DateRange{date(2027, 6, 5), date(2027, 6, 10)}

	// A stay ending exactly on the window start intersects, unlike the
	// strict booking overlap rule.
	touching := DateRange{date(2027, 6, 1), date(2027, 6, 5)}
	if !touching.Intersects(window) {
		t.Fatal("touching range should intersect the metrics window")
	}
	if touching.Overlaps(window) {
		t.Fatal("touching range must not count as a booking overlap")
	}

	outside := DateRange{date(2027, 6, 11), date(2027, 6, 15)}
	if outside.Intersects(window) {
		t.Fatal("disjoint range should not intersect")
	}
}

func TestDateRange_Validate(t *testing.T) {
	if err := (DateRange{date(2027, 6, 5), date(2027, 6, 1)}).Validate(); err == nil {
		t.Fatal("inverted range should fail validation")
	}
	// Equal endpoints are a legal metrics window.
	if err := (DateRange{date(2027, 6, 1), date(2027, 6, 1)}).Validate(); err != nil {
		t.Fatalf("single-day window should validate, got %v", err)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/harborstay/reservations/internal/domain"
	"github.com/harborstay/reservations/pkg/logger"
)

const dateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// parsePagination reads limit/offset query params, defaulting to 20/0 and
// capping limit at 100.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

// parseDate accepts plain calendar dates and full RFC3339 timestamps; either
// way only the date part matters.
func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return domain.Day(t), true
	}
	return time.Time{}, false
}

// parseDateRange reads check_in/check_out query params.
func parseDateRange(r *http.Request) (domain.DateRange, bool) {
	in, okIn := parseDate(r.URL.Query().Get("check_in"))
	out, okOut := parseDate(r.URL.Query().Get("check_out"))
	if !okIn || !okOut {
		return domain.DateRange{}, false
	}
	return domain.DateRange{CheckIn: in, CheckOut: out}, true
}

func parseID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	return id, err == nil
}

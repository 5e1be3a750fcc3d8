package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harborstay/reservations/internal/domain"
	"github.com/harborstay/reservations/internal/http/response"
	"github.com/harborstay/reservations/internal/service"
)

// ListingsHandler serves the read side of a listing: availability, price
// quotes, reservations and metrics.
type ListingsHandler struct {
	reservations service.ReservationService
	metrics      service.MetricsService
}

func NewListingsHandler(reservations service.ReservationService, metrics service.MetricsService) *ListingsHandler {
	return &ListingsHandler{
		reservations: reservations,
		metrics:      metrics,
	}
}

func (h *ListingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}/availability", h.availability)
	r.Get("/{id}/quote", h.quote)
	r.Get("/{id}/reservations", h.listReservations)
	r.Get("/{id}/metrics", h.getMetrics)
	return r
}

func (h *ListingsHandler) availability(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid listing id")
		return
	}
	stay, ok := parseDateRange(r)
	if !ok {
		response.BadRequest(w, "check_in and check_out must be YYYY-MM-DD dates")
		return
	}

	available, err := h.reservations.IsAvailable(r.Context(), id, stay)
	if err != nil {
		response.FromDomain(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"listing_id": id,
		"check_in":   stay.Normalize().CheckIn.Format(dateLayout),
		"check_out":  stay.Normalize().CheckOut.Format(dateLayout),
		"available":  available,
	})
}

func (h *ListingsHandler) quote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid listing id")
		return
	}
	stay, ok := parseDateRange(r)
	if !ok {
		response.BadRequest(w, "check_in and check_out must be YYYY-MM-DD dates")
		return
	}

	guests := 1
	if v := r.URL.Query().Get("guests"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.BadRequest(w, "invalid guests")
			return
		}
		guests = n
	}

	total, err := h.reservations.QuotePrice(r.Context(), id, stay, guests)
	if err != nil {
		response.FromDomain(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"listing_id":        id,
		"nights":            stay.Nights(),
		"guests":            guests,
		"total_price_cents": total,
	})
}

func (h *ListingsHandler) listReservations(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid listing id")
		return
	}

	limit, offset := parsePagination(r)
	list, err := h.reservations.ListByListing(r.Context(), id, limit, offset)
	if err != nil {
		response.FromDomain(w, err)
		return
	}
	if list == nil {
		list = []domain.Reservation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservations": list,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *ListingsHandler) getMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid listing id")
		return
	}
	window, ok := parseDateRange(r)
	if !ok {
		response.NotFound(w, "metrics window is required: check_in and check_out dates")
		return
	}

	metrics, err := h.metrics.GetListingMetrics(r.Context(), id, window)
	if err != nil {
		response.FromDomain(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

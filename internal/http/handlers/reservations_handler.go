package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborstay/reservations/internal/domain"
	mw "github.com/harborstay/reservations/internal/http/middleware"
	"github.com/harborstay/reservations/internal/http/response"
	"github.com/harborstay/reservations/internal/service"
)

type ReservationsHandler struct {
	reservations service.ReservationService
	jwtSecret    string
	limiter      *mw.RateLimiter
}

func NewReservationsHandler(reservations service.ReservationService, jwtSecret string, limiter *mw.RateLimiter) *ReservationsHandler {
	return &ReservationsHandler{
		reservations: reservations,
		jwtSecret:    jwtSecret,
		limiter:      limiter,
	}
}

func (h *ReservationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireJWT(h.jwtSecret))
	if h.limiter != nil {
		r.With(h.limiter.Middleware()).Post("/", h.create)
	} else {
		r.Post("/", h.create)
	}
	r.Get("/", h.listOwn)
	r.Get("/search", h.search)
	r.Get("/{id}", h.getByID)
	r.Delete("/{id}", h.cancel)
	r.Patch("/{id}/status", h.updateStatus)
	return r
}

type createReservationReq struct {
	ListingID string `json:"listing_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Guests    int    `json:"guests"`
}

func (h *ReservationsHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)
	if claims == nil || claims.Sub == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var in createReservationReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	listingID, ok := parseID(in.ListingID)
	if !ok {
		response.BadRequest(w, "invalid listing_id")
		return
	}
	checkIn, okIn := parseDate(in.CheckIn)
	checkOut, okOut := parseDate(in.CheckOut)
	if !okIn || !okOut {
		response.BadRequest(w, "check_in and check_out must be YYYY-MM-DD dates")
		return
	}

	req := &domain.CreateReservationReq{
		GuestID:   claims.Sub,
		ListingID: listingID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    in.Guests,
	}

	created, err := h.reservations.Create(r.Context(), req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		response.FromDomain(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ReservationsHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid reservation id")
		return
	}

	res, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		response.FromDomain(w, err)
		return
	}

	claims := mw.Claims(r)
	if claims == nil || (claims.Sub != res.GuestID && claims.Sub != res.HostID) {
		response.Forbidden(w, "not your reservation")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationsHandler) listOwn(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)
	if claims == nil || claims.Sub == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, offset := parsePagination(r)
	list, err := h.reservations.ListByGuest(r.Context(), claims.Sub, limit, offset)
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

func (h *ReservationsHandler) search(w http.ResponseWriter, r *http.Request) {
	var filter domain.SearchFilter
	q := r.URL.Query()

	if v := q.Get("user_id"); v != "" {
		id, ok := parseID(v)
		if !ok {
			response.BadRequest(w, "invalid user_id")
			return
		}
		filter.GuestID = &id
	}
	if v := q.Get("host_id"); v != "" {
		id, ok := parseID(v)
		if !ok {
			response.BadRequest(w, "invalid host_id")
			return
		}
		filter.HostID = &id
	}
	if v := q.Get("listing_id"); v != "" {
		id, ok := parseID(v)
		if !ok {
			response.BadRequest(w, "invalid listing_id")
			return
		}
		filter.ListingID = &id
	}
	if v := q.Get("status"); v != "" {
		status, ok := domain.ParseReservationStatus(v)
		if !ok {
			response.BadRequest(w, "invalid status")
			return
		}
		filter.Status = &status
	}
	if q.Get("check_in") != "" || q.Get("check_out") != "" {
		window, ok := parseDateRange(r)
		if !ok {
			response.BadRequest(w, "check_in and check_out must both be YYYY-MM-DD dates")
			return
		}
		filter.Range = &window
	}

	limit, offset := parsePagination(r)
	list, err := h.reservations.Search(r.Context(), filter, limit, offset)
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

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *ReservationsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)
	if claims == nil || claims.Sub == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid reservation id")
		return
	}

	var in cancelReq
	if r.Body != nil {
		// Reason is optional; a missing body is fine.
		_ = json.NewDecoder(r.Body).Decode(&in)
	}

	if err := h.reservations.Cancel(r.Context(), id, claims.Sub, in.Reason); err != nil {
		response.FromDomain(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "canceled"})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *ReservationsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)
	if claims == nil || claims.Sub == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid reservation id")
		return
	}

	var in updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	status, ok := domain.ParseReservationStatus(in.Status)
	if !ok {
		response.BadRequest(w, "invalid status")
		return
	}

	if err := h.reservations.UpdateStatus(r.Context(), id, status, claims.Sub); err != nil {
		response.FromDomain(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

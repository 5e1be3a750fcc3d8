package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/harborstay/reservations/internal/http/response"
	"github.com/harborstay/reservations/pkg/events"
	"github.com/harborstay/reservations/pkg/logger"
)

// PaymentsHandler terminates the payment provider's webhook. A verified
// successful charge turns into a payment.captured event on the bus; the
// payments service consumes it and confirms the reservation.
type PaymentsHandler struct {
	eventBus      events.Publisher
	webhookSecret string
}

func NewPaymentsHandler(eventBus events.Publisher, webhookSecret string) *PaymentsHandler {
	return &PaymentsHandler{
		eventBus:      eventBus,
		webhookSecret: webhookSecret,
	}
}

func (h *PaymentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/webhook", h.webhook)
	return r
}

func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		response.BadRequest(w, "failed to read payload")
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		response.BadRequest(w, "invalid webhook signature")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			response.BadRequest(w, "malformed payment intent")
			return
		}

		paymentID, err := uuid.Parse(intent.Metadata["payment_id"])
		if err != nil {
			logger.WarnContext(r.Context(), "Payment intent without payment_id metadata", "intent", intent.ID)
			response.BadRequest(w, "payment intent missing payment_id metadata")
			return
		}
		reservationID, _ := uuid.Parse(intent.Metadata["reservation_id"])

		captured := events.PaymentCapturedEvent{
			PaymentID:     paymentID,
			ReservationID: reservationID,
			AmountCents:   intent.Amount,
			ExternalRef:   intent.ID,
			CapturedAt:    time.Now(),
		}
		if err := h.eventBus.Publish(r.Context(), events.PaymentCaptured, captured); err != nil {
			logger.ErrorContext(r.Context(), "Failed to publish payment captured event",
				"error", err, "payment_id", paymentID)
			response.InternalError(w, "failed to enqueue payment confirmation")
			return
		}

	default:
		logger.DebugContext(r.Context(), "Ignoring webhook event", "type", event.Type)
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}

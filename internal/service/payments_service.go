package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborstay/reservations/internal/domain"
	"github.com/harborstay/reservations/internal/repo/postgres"
	"github.com/harborstay/reservations/pkg/events"
	"github.com/harborstay/reservations/pkg/logger"
)

type PaymentsService interface {
	// ConfirmPayment records a captured payment and moves the linked
	// reservation to confirmed. Capture is an authoritative external
	// signal, so the reservation status is written directly instead of
	// going through the host transition guard.
	ConfirmPayment(ctx context.Context, paymentID uuid.UUID, externalRef string) error
	// StartConsumer wires the service to payment.captured events on the bus.
	StartConsumer(bus events.Subscriber, queue string) error
}

type paymentsService struct {
	payments     postgres.PaymentsRepo
	reservations postgres.ReservationsRepo
	eventBus     events.Publisher
}

func NewPaymentsService(
	payments postgres.PaymentsRepo,
	reservations postgres.ReservationsRepo,
	eventBus events.Publisher,
) PaymentsService {
	return &paymentsService{
		payments:     payments,
		reservations: reservations,
		eventBus:     eventBus,
	}
}

func (s *paymentsService) ConfirmPayment(ctx context.Context, paymentID uuid.UUID, externalRef string) error {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return fmt.Errorf("payment %s: %w", paymentID, domain.ErrNotFound)
	}
	if payment.Status == domain.PaymentCaptured {
		return fmt.Errorf("payment %s: %w", paymentID, domain.ErrAlreadyConfirmed)
	}

	res, err := s.reservations.GetByID(ctx, payment.ReservationID)
	if err != nil {
		return fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return fmt.Errorf("reservation %s for payment %s: %w", payment.ReservationID, paymentID, domain.ErrNotFound)
	}

	captured, err := s.payments.MarkCaptured(ctx, paymentID, externalRef)
	if err != nil {
		return fmt.Errorf("failed to mark payment captured: %w", err)
	}
	if !captured {
		// Another confirmation landed first.
		return fmt.Errorf("payment %s: %w", paymentID, domain.ErrAlreadyConfirmed)
	}

	ok, err := s.reservations.SetStatus(ctx, res.ID, res.Status, domain.ReservationConfirmed)
	if err != nil {
		return fmt.Errorf("failed to confirm reservation: %w", err)
	}
	if !ok {
		return fmt.Errorf("reservation %s changed state concurrently: %w", res.ID, domain.ErrStateConflict)
	}

	event := events.ReservationStatusEvent{
		ReservationID: res.ID,
		ListingID:     res.ListingID,
		Status:        string(domain.ReservationConfirmed),
		UpdatedAt:     time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.ReservationConfirmed, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reservation confirmed event", "error", err, "reservation_id", res.ID)
	}

	return nil
}

func (s *paymentsService) StartConsumer(bus events.Subscriber, queue string) error {
	return bus.QueueSubscribe(events.PaymentCaptured, queue, func(msg *events.Message) {
		var event events.PaymentCapturedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("Failed to decode payment captured event", "error", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.ConfirmPayment(ctx, event.PaymentID, event.ExternalRef); err != nil {
			logger.Error("Failed to apply payment confirmation",
				"error", err, "payment_id", event.PaymentID, "reservation_id", event.ReservationID)
		}
	})
}

package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/harborstay/reservations/internal/platform/mailer"
	"github.com/harborstay/reservations/internal/repo/postgres"
	"github.com/harborstay/reservations/pkg/events"
	"github.com/harborstay/reservations/pkg/logger"
)

// Consumer turns reservation events into guest emails. Delivery is
// best-effort: a failed send is logged and dropped, never retried into the
// booking path.
type Consumer struct {
	users        postgres.UsersRepo
	reservations postgres.ReservationsRepo
	mailer       mailer.Service
}

func NewConsumer(users postgres.UsersRepo, reservations postgres.ReservationsRepo, m mailer.Service) *Consumer {
	return &Consumer{
		users:        users,
		reservations: reservations,
		mailer:       m,
	}
}

const dateLayout = "2006-01-02"

func (c *Consumer) Start(bus events.Subscriber, queue string) error {
	if err := bus.QueueSubscribe(events.ReservationCreated, queue, c.onCreated); err != nil {
		return err
	}
	return bus.QueueSubscribe(events.ReservationCanceled, queue, c.onCanceled)
}

func (c *Consumer) onCreated(msg *events.Message) {
	var event events.ReservationCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode reservation created event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	guest, err := c.users.FindByID(ctx, event.GuestID)
	if err != nil || guest == nil {
		logger.Error("Failed to resolve guest for notification", "error", err, "guest_id", event.GuestID)
		return
	}

	err = c.mailer.SendReservationCreatedEmail(
		guest.Email, guest.Name,
		event.ListingID.String(),
		event.CheckIn.Format(dateLayout),
		event.CheckOut.Format(dateLayout),
	)
	if err != nil {
		logger.Error("Failed to send reservation created email", "error", err, "reservation_id", event.ReservationID)
	}
}

func (c *Consumer) onCanceled(msg *events.Message) {
	var event events.ReservationCanceledEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode reservation canceled event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := c.reservations.GetByID(ctx, event.ReservationID)
	if err != nil || res == nil {
		logger.Error("Failed to resolve reservation for notification", "error", err, "reservation_id", event.ReservationID)
		return
	}

	guest, err := c.users.FindByID(ctx, res.GuestID)
	if err != nil || guest == nil {
		logger.Error("Failed to resolve guest for notification", "error", err, "guest_id", res.GuestID)
		return
	}

	err = c.mailer.SendReservationCanceledEmail(
		guest.Email, guest.Name,
		res.CheckIn.Format(dateLayout),
		event.Reason,
	)
	if err != nil {
		logger.Error("Failed to send reservation canceled email", "error", err, "reservation_id", res.ID)
	}
}

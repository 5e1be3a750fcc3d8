package mailer

import (
	"github.com/harborstay/reservations/pkg/logger"
)

// DevMailer logs instead of sending; the default outside production.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendReservationCreatedEmail(toEmail, toName, listingName, checkIn, checkOut string) error {
	logger.Info("[DEV MAIL] Reservation created",
		"to", toEmail,
		"name", toName,
		"listing", listingName,
		"check_in", checkIn,
		"check_out", checkOut,
	)
	return nil
}

func (d *DevMailer) SendReservationCanceledEmail(toEmail, toName, checkIn, reason string) error {
	logger.Info("[DEV MAIL] Reservation cancelled",
		"to", toEmail,
		"name", toName,
		"check_in", checkIn,
		"reason", reason,
	)
	return nil
}

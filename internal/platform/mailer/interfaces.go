package mailer

type Service interface {
	SendReservationCreatedEmail(toEmail, toName, listingName, checkIn, checkOut string) error
	SendReservationCanceledEmail(toEmail, toName, checkIn, reason string) error
}

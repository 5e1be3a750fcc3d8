package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendReservationCreatedEmail(toEmail, toName, listingName, checkIn, checkOut string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Your Harborstay reservation request"
	html := fmt.Sprintf(`
		<h2>Reservation received</h2>
		<p>Hi %s,</p>
		<p>We received your reservation request for <strong>%s</strong>.</p>
		<p>Check-in: <strong>%s</strong><br>Check-out: <strong>%s</strong></p>
		<p>You'll get another email as soon as the host confirms.</p>
	`, toName, listingName, checkIn, checkOut)

	text := fmt.Sprintf("We received your reservation request for %s.\nCheck-in: %s\nCheck-out: %s\n\nYou'll get another email as soon as the host confirms.",
		listingName, checkIn, checkOut)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendReservationCanceledEmail(toEmail, toName, checkIn, reason string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Your Harborstay reservation was cancelled"
	html := fmt.Sprintf(`
		<h2>Reservation cancelled</h2>
		<p>Hi %s,</p>
		<p>Your reservation with check-in on <strong>%s</strong> has been cancelled.</p>
		<p>Reason: %s</p>
	`, toName, checkIn, reason)

	text := fmt.Sprintf("Your reservation with check-in on %s has been cancelled.\nReason: %s", checkIn, reason)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}

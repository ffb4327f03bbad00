package mail

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"

	"github.com/slotwise/booking-api/config"
	"github.com/slotwise/booking-api/util"
)

// CancellationMessage is the payload of a cancellation-mail job: the
// appointment plus the identities of both parties, carried in full so the
// worker needs no database access.
type CancellationMessage struct {
	AppointmentID uint      `json:"appointment_id"`
	Date          time.Time `json:"date"`
	UserName      string    `json:"user_name"`
	ProviderName  string    `json:"provider_name"`
	ProviderEmail string    `json:"provider_email"`
}

// Sender handles sending emails via SMTP.
type Sender struct {
	cfg *config.Config
}

// NewSender creates a new email sender.
func NewSender(cfg *config.Config) *Sender {
	return &Sender{cfg: cfg}
}

// SendCancellationMail notifies the provider that a booking was canceled.
func (s *Sender) SendCancellationMail(msg CancellationMessage) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{msg.ProviderEmail}
	e.Subject = "Appointment canceled"
	e.Text = []byte(cancellationBody(msg))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		util.Logger().Errorf("Failed to send cancellation mail to %s: %v", msg.ProviderEmail, err)
		return fmt.Errorf("failed to send cancellation mail: %w", err)
	}

	util.Logger().Infof("Cancellation mail sent to %s for appointment %d", msg.ProviderEmail, msg.AppointmentID)
	return nil
}

func cancellationBody(msg CancellationMessage) string {
	return fmt.Sprintf(
		"Dear %s,\n\n"+
			"%s has canceled the appointment scheduled for %s.\n"+
			"The slot is available for new bookings again.\n"+
			"\nBest regards,\nBooking Service",
		msg.ProviderName, msg.UserName, util.FormatAppointmentDate(msg.Date),
	)
}

package service

import (
	"fmt"
	"strings"

	"github.com/spiral-platform/spiral-api/internal/config"
	"github.com/spiral-platform/spiral-api/internal/logger"
	"github.com/spiral-platform/spiral-api/internal/models"

	"github.com/wneessen/go-mail"
)

// EmailService sends notification mail over SMTP. Disabled config makes
// every send a logged no-op so worker handlers never fail on mail setup.
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates the email service.
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled reports whether SMTP is configured.
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled && strings.TrimSpace(s.cfg.Host) != ""
}

// SendTripInvite mails one trip invite to a guest.
func (s *EmailService) SendTripInvite(to string, trip *models.ShoppingTrip, hostName string) error {
	subject := fmt.Sprintf("You're invited: %s", trip.Name)
	body := buildTripInviteHTML(trip, hostName)
	return s.send(to, subject, body)
}

// SendRefundStatus mails the shopper after their refund settles.
func (s *EmailService) SendRefundStatus(to string, refund *models.RefundTransaction) error {
	subject := "Your SPIRAL refund update"
	body := buildRefundStatusHTML(refund)
	return s.send(to, subject, body)
}

func (s *EmailService) send(to, subject, htmlBody string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil
	}
	if !s.Enabled() {
		logger.Debugw("email_send_skipped", "to", to, "subject", subject)
		return nil
	}

	msg := mail.NewMsg()
	from := strings.TrimSpace(s.cfg.From)
	fromName := strings.TrimSpace(s.cfg.FromName)
	if fromName != "" {
		if err := msg.FromFormat(fromName, from); err != nil {
			return err
		}
	} else if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	}
	if s.cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSend(msg)
}

func buildTripInviteHTML(trip *models.ShoppingTrip, hostName string) string {
	if hostName == "" {
		hostName = "A fellow shopper"
	}
	return fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<h2>%s invited you on a shopping trip</h2>
<p><strong>%s</strong></p>
<p>When: %s<br>Where: %s</p>
<p>Use trip code <strong>%s</strong> to respond.</p>
<p>— SPIRAL</p>
</body></html>`,
		hostName, trip.Name, trip.Date.Format("Monday, Jan 2 2006"), trip.Location, trip.TripCode)
}

func buildRefundStatusHTML(refund *models.RefundTransaction) string {
	detail := fmt.Sprintf("%s was refunded via %s.", refund.Amount.String(), refund.Method)
	if refund.PointsAwarded > 0 {
		detail = fmt.Sprintf("%s You received %d SPIRAL points.", detail, refund.PointsAwarded)
	}
	return fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif;">
<h2>Refund %s</h2>
<p>%s</p>
<p>— SPIRAL</p>
</body></html>`, refund.Status, detail)
}

package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/pricetracker/web/internal/config"
)

// MailerName identifies outgoing mail in the X-Mailer header
const MailerName = "PriceTracker Mailer"

// Message is a rendered email ready for delivery
type Message struct {
	FromEmail string
	FromName  string
	To        string
	Subject   string
	HTML      string
	Text      string
}

// Transport delivers rendered messages
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Sender renders and sends account emails
type Sender struct {
	cfg       *config.Config
	transport Transport
	logger    *logrus.Logger
}

// NewSender creates a new email sender using the configured provider
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	var transport Transport
	switch cfg.MailProvider {
	case config.MailProviderSendGrid:
		transport = NewSendGridTransport(cfg.SendGridAPIKey)
	default:
		transport = NewSMTPTransport(cfg)
	}
	return NewSenderWithTransport(cfg, transport, logger)
}

// NewSenderWithTransport creates a sender that delivers through transport
func NewSenderWithTransport(cfg *config.Config, transport Transport, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:       cfg,
		transport: transport,
		logger:    logger,
	}
}

// SendPasswordReset sends the password reset email
func (s *Sender) SendPasswordReset(ctx context.Context, to, name, resetLink string) error {
	if to == "" {
		return fmt.Errorf("recipient is required")
	}

	html, text, err := RenderResetPassword(ResetPasswordData{Name: name, ResetLink: resetLink})
	if err != nil {
		return err
	}

	msg := Message{
		FromEmail: s.cfg.SenderEmail,
		FromName:  s.cfg.SenderName,
		To:        to,
		Subject:   ResetSubject,
		HTML:      html,
		Text:      text,
	}
	if err := s.transport.Send(ctx, msg); err != nil {
		s.logger.Errorf("Failed to send password reset email to %s: %v", to, err)
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, msg.Subject)
	return nil
}

// SMTPTransport delivers mail over SMTP
type SMTPTransport struct {
	addr string
	auth smtp.Auth
}

// NewSMTPTransport creates an SMTP transport. Authentication is skipped
// when no username is configured, as with local catch-all servers.
func NewSMTPTransport(cfg *config.Config) *SMTPTransport {
	t := &SMTPTransport{addr: fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort)}
	if cfg.SMTPUsername != "" {
		t.auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return t
}

// Send delivers msg. The SMTP client takes no context, so ctx is only
// checked before dialing.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return compose(msg).Send(t.addr, t.auth)
}

func compose(msg Message) *email.Email {
	e := email.NewEmail()
	e.From = msg.FromEmail
	if msg.FromName != "" {
		e.From = fmt.Sprintf("%s <%s>", msg.FromName, msg.FromEmail)
	}
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.HTML = []byte(msg.HTML)
	e.Text = []byte(msg.Text)
	e.Headers.Set("X-Mailer", MailerName)
	return e
}

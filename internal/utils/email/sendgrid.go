package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridEndpoint = "/v3/mail/send"

// SendGridTransport delivers mail through the SendGrid v3 API
type SendGridTransport struct {
	apiKey string
	host   string
}

// NewSendGridTransport creates a SendGrid transport
func NewSendGridTransport(apiKey string) *SendGridTransport {
	return &SendGridTransport{apiKey: apiKey}
}

// Send delivers msg. A client is built per message because the SendGrid
// client keeps the request body on itself.
func (t *SendGridTransport) Send(ctx context.Context, msg Message) error {
	client := sendgrid.NewSendClient(t.apiKey)
	if t.host != "" {
		client.BaseURL = t.host + sendGridEndpoint
	}

	from := mail.NewEmail(msg.FromName, msg.FromEmail)
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	message.SetHeader("X-Mailer", MailerName)

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid responded with status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

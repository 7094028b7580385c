package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridTransport delivers letters through the SendGrid v3 API.
type SendGridTransport struct {
	client sendgridAPI
	from   Mailbox
}

// NewSendGridTransport returns nil without an API key.
func NewSendGridTransport(apiKey string, from Mailbox) *SendGridTransport {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return newSendGridTransport(sendgrid.NewSendClient(apiKey), from)
}

func newSendGridTransport(client sendgridAPI, from Mailbox) *SendGridTransport {
	if from.Name == "" {
		from.Name = defaultFromName
	}
	return &SendGridTransport{client: client, from: from}
}

func (t *SendGridTransport) Deliver(ctx context.Context, l Letter) (string, error) {
	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail(t.from.Name, t.from.Address))
	msg.Subject = l.Subject
	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(l.To.Name, l.To.Address))
	msg.AddPersonalizations(p)
	if !l.ReplyTo.empty() {
		msg.SetReplyTo(mail.NewEmail(l.ReplyTo.Name, l.ReplyTo.Address))
	}
	msg.AddContent(mail.NewContent("text/plain", l.Text))

	resp, err := t.client.SendWithContext(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("notify: sendgrid returned status %d", resp.StatusCode)
	}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}

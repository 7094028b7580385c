package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the slice of the SES v2 client used for sends.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESTransport delivers letters through Amazon SES.
type SESTransport struct {
	client SESAPI
	from   Mailbox
}

// NewSESTransport returns nil without a client or a from address.
func NewSESTransport(client SESAPI, from Mailbox) *SESTransport {
	if client == nil || from.empty() {
		return nil
	}
	if from.Name == "" {
		from.Name = defaultFromName
	}
	return &SESTransport{client: client, from: from}
}

func (t *SESTransport) Deliver(ctx context.Context, l Letter) (string, error) {
	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(t.from.String()),
		Destination:      &types.Destination{ToAddresses: []string{l.To.String()}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(l.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(l.Text), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	if !l.ReplyTo.empty() {
		in.ReplyToAddresses = []string{l.ReplyTo.String()}
	}
	out, err := t.client.SendEmail(ctx, in)
	if err != nil {
		return "", fmt.Errorf("notify: ses send: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

var twilioTracer = otel.Tracer("whatsapp-bot.internal.whatsapp.twilio")

// MessageCreator is the slice of the Twilio REST client used for sends.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender delivers WhatsApp messages through Twilio.
type TwilioSender struct {
	api    MessageCreator
	from   string
	logger *logging.Logger
}

// NewTwilioSender builds a sender backed by the Twilio REST client.
func NewTwilioSender(accountSID, authToken, from string, logger *logging.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return NewTwilioSenderWithAPI(client.Api, from, logger)
}

// NewTwilioSenderWithAPI wires a custom MessageCreator.
func NewTwilioSenderWithAPI(api MessageCreator, from string, logger *logging.Logger) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &TwilioSender{api: api, from: from, logger: logger}
}

var _ conversation.Messenger = (*TwilioSender)(nil)

// SendText sends body to the WhatsApp number to.
func (s *TwilioSender) SendText(ctx context.Context, to, body string) (conversation.Receipt, error) {
	if s == nil || s.api == nil {
		return conversation.Receipt{}, errors.New("whatsapp: twilio client not configured")
	}
	recipient := E164(to)
	if recipient == "" {
		return conversation.Receipt{}, errors.New("whatsapp: recipient required")
	}
	from := E164(s.from)
	if from == "" {
		return conversation.Receipt{}, errors.New("whatsapp: twilio from number required")
	}
	if strings.TrimSpace(body) == "" {
		return conversation.Receipt{}, errors.New("whatsapp: body required")
	}
	if err := ctx.Err(); err != nil {
		return conversation.Receipt{}, err
	}

	_, span := twilioTracer.Start(ctx, "whatsapp.twilio.send_text")
	defer span.End()
	span.SetAttributes(attribute.Int("whatsapp.body_length", len(body)))

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + from)
	params.SetTo("whatsapp:" + recipient)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		span.RecordError(err)
		return conversation.Receipt{}, fmt.Errorf("whatsapp: twilio send: %w", err)
	}
	receipt := conversation.Receipt{Status: "queued"}
	if resp != nil {
		if resp.Sid != nil {
			receipt.MessageID = *resp.Sid
		}
		if resp.Status != nil && *resp.Status != "" {
			receipt.Status = *resp.Status
		}
	}
	s.logger.Info("twilio whatsapp sent", "to", logging.RedactPhone(recipient), "sid", receipt.MessageID)
	return receipt, nil
}

package whatsapp

import (
	"context"
	"errors"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// FailoverMessenger attempts a primary send, then falls back to a secondary provider on error.
type FailoverMessenger struct {
	primary       conversation.Messenger
	secondary     conversation.Messenger
	primaryName   string
	secondaryName string
	logger        *logging.Logger
}

// NewFailoverMessenger builds a failover messenger with named providers.
func NewFailoverMessenger(primary conversation.Messenger, primaryName string, secondary conversation.Messenger, secondaryName string, logger *logging.Logger) *FailoverMessenger {
	if logger == nil {
		logger = logging.Default()
	}
	return &FailoverMessenger{
		primary:       primary,
		secondary:     secondary,
		primaryName:   primaryName,
		secondaryName: secondaryName,
		logger:        logger,
	}
}

var _ conversation.Messenger = (*FailoverMessenger)(nil)

// SendText tries the primary provider first, then the secondary.
func (f *FailoverMessenger) SendText(ctx context.Context, to, body string) (conversation.Receipt, error) {
	if f == nil || f.primary == nil {
		return conversation.Receipt{}, errors.New("whatsapp: failover primary sender not configured")
	}
	receipt, err := f.primary.SendText(ctx, to, body)
	if err == nil {
		return receipt, nil
	}
	if f.secondary == nil || ctx.Err() != nil {
		return conversation.Receipt{}, err
	}
	f.logger.Warn("primary whatsapp send failed; attempting fallback",
		"provider", f.primaryName,
		"fallback", f.secondaryName,
		"error", err,
		"to", logging.RedactPhone(to),
	)
	receipt, fallbackErr := f.secondary.SendText(ctx, to, body)
	if fallbackErr != nil {
		f.logger.Error("fallback whatsapp send failed",
			"provider", f.secondaryName,
			"error", fallbackErr,
			"to", logging.RedactPhone(to),
		)
		return conversation.Receipt{}, fallbackErr
	}
	return receipt, nil
}

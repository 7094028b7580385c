package conversation

import "context"

// Messenger delivers text to a WhatsApp user.
type Messenger interface {
	SendText(ctx context.Context, to, body string) (Receipt, error)
}

// Receipt is the transport's acknowledgement of an outbound message.
type Receipt struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// MessengerFunc adapts a function to Messenger.
type MessengerFunc func(ctx context.Context, to, body string) (Receipt, error)

// SendText calls f.
func (f MessengerFunc) SendText(ctx context.Context, to, body string) (Receipt, error) {
	return f(ctx, to, body)
}

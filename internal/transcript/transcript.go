// Package transcript stores the per-user conversation log that booking state is derived from.
package transcript

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultMaxEntries bounds how many entries are kept per user.
const DefaultMaxEntries = 50

// MaxQuoteRecords bounds how many vendor quote records are kept per user, newest last.
const MaxQuoteRecords = 10

// ErrNotFound is returned when a user has no stored quote record.
var ErrNotFound = errors.New("transcript: not found")

// Speaker identifies who authored an entry.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Entry is one line of the conversation.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"message"`
}

// IsBot reports whether the entry was sent by the assistant.
func (e Entry) IsBot() bool { return e.Speaker == SpeakerBot }

// UserEntry builds a user-authored entry.
func UserEntry(text string, at time.Time) Entry {
	return Entry{Timestamp: at, Speaker: SpeakerUser, Text: text}
}

// BotEntry builds an assistant-authored entry.
func BotEntry(text string, at time.Time) Entry {
	return Entry{Timestamp: at, Speaker: SpeakerBot, Text: text}
}

// Quote is a single vendor offer.
type Quote struct {
	VendorName string `json:"vendor_name"`
	FinalPrice string `json:"final_price"`
	Details    string `json:"details,omitempty"`
	ValidUntil string `json:"valid_until,omitempty"`
}

// QuoteRecord is a batch of vendor quotes pushed by the backend for one customer.
type QuoteRecord struct {
	Destination string    `json:"destination"`
	ServiceType string    `json:"service_type"`
	Quotes      []Quote   `json:"quotes"`
	RequestID   string    `json:"request_id"`
	ReceivedAt  time.Time `json:"received_at"`
}

// Store persists transcripts and quote records keyed by user id.
type Store interface {
	Append(ctx context.Context, userID string, entry Entry) error
	List(ctx context.Context, userID string) ([]Entry, error)
	SaveQuote(ctx context.Context, userID string, record QuoteRecord) error
	LatestQuote(ctx context.Context, userID string) (QuoteRecord, error)
	Delete(ctx context.Context, userID string) error
}

// Render formats entries as "User: ..." / "Bot: ..." lines, the shape prompts expect.
func Render(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.IsBot() {
			b.WriteString("Bot: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(e.Text)
	}
	return b.String()
}

// Tail returns the newest n entries.
func Tail(entries []Entry, n int) []Entry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

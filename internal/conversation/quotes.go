package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/booking"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

// ErrNoQuotes rejects a quote push without any vendor offers.
var ErrNoQuotes = errors.New("conversation: quote record has no quotes")

// IngestQuotes stores a vendor quote record, sends it to the customer and
// moves the user's flow to StageQuotesReceived.
func (e *Engine) IngestQuotes(ctx context.Context, userID string, record transcript.QuoteRecord) (Receipt, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Receipt{}, errors.New("conversation: customer phone is required")
	}
	if len(record.Quotes) == 0 {
		return Receipt{}, ErrNoQuotes
	}
	if record.RequestID == "" {
		record.RequestID = uuid.NewString()
	}
	if record.ReceivedAt.IsZero() {
		record.ReceivedAt = e.now()
	}
	if err := e.transcripts.SaveQuote(ctx, userID, record); err != nil {
		return Receipt{}, fmt.Errorf("conversation: save quotes: %w", err)
	}

	flow := e.flows.Get(userID)
	flow.Stage = StageQuotesReceived
	flow.UpdatedAt = e.now()
	e.flows.Put(userID, flow)

	e.logger.WithUser(userID).Info("vendor quotes received", "request_id", record.RequestID, "quotes", len(record.Quotes))
	return e.Notify(ctx, userID, FormatQuoteMessage(record, e.cfg.BrandName))
}

// Notify sends a backend-originated message and records it as a bot entry.
func (e *Engine) Notify(ctx context.Context, userID, text string) (Receipt, error) {
	if strings.TrimSpace(text) == "" {
		return Receipt{}, errors.New("conversation: empty notification")
	}
	if err := e.transcripts.Append(ctx, userID, transcript.BotEntry(text, e.now())); err != nil {
		e.logger.WithUser(userID).Error("failed to append notification", "error", err)
	}
	return e.send(ctx, userID, text)
}

// Snapshot is the admin view of one user.
type Snapshot struct {
	UserID      string                  `json:"user_id"`
	Entries     []transcript.Entry      `json:"entries"`
	State       booking.State           `json:"booking_state"`
	Flow        FlowState               `json:"flow"`
	LatestQuote *transcript.QuoteRecord `json:"latest_quote,omitempty"`
}

// Snapshot returns the transcript, derived booking state and flow state for userID.
func (e *Engine) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	entries, err := e.transcripts.List(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("conversation: load transcript: %w", err)
	}
	if entries == nil {
		entries = []transcript.Entry{}
	}
	snap := Snapshot{
		UserID:  userID,
		Entries: entries,
		State:   booking.Aggregate(entries, ""),
		Flow:    e.flows.Get(userID),
	}
	quote, err := e.transcripts.LatestQuote(ctx, userID)
	switch {
	case err == nil:
		snap.LatestQuote = &quote
	case errors.Is(err, transcript.ErrNotFound):
	default:
		return Snapshot{}, fmt.Errorf("conversation: load quotes: %w", err)
	}
	return snap, nil
}

// Forget deletes everything stored for userID.
func (e *Engine) Forget(ctx context.Context, userID string) error {
	if err := e.transcripts.Delete(ctx, userID); err != nil {
		return fmt.Errorf("conversation: delete transcript: %w", err)
	}
	e.flows.Delete(userID)
	e.notices.Clear(userID)
	return nil
}

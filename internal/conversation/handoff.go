package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

// Handoff is one booking forwarded to the executive.
type Handoff struct {
	Summary ExecutiveSummary
	// Text is the summary exactly as sent over WhatsApp.
	Text       string
	WithQuotes bool
}

// handoff forwards everything known about the customer to the executive.
// withQuotes requires a stored quote record first.
func (e *Engine) handoff(ctx context.Context, t *turn, withQuotes bool) string {
	var quotes []transcript.Quote
	record, err := e.transcripts.LatestQuote(ctx, t.userID)
	switch {
	case err == nil:
		quotes = record.Quotes
	case errors.Is(err, transcript.ErrNotFound):
	default:
		t.log.Warn("quote lookup failed", "error", err)
	}
	if withQuotes && len(quotes) == 0 {
		return MsgQuotesMissing
	}
	if strings.TrimSpace(e.cfg.ExecutivePhone) == "" {
		t.log.Error("executive phone number not configured")
		return MsgBookingUnavailable
	}

	summary := e.executiveSummary(ctx, t, quotes)
	text := FormatExecutiveSummary(summary)
	if _, err := e.send(ctx, e.cfg.ExecutivePhone, text); err != nil {
		t.log.Error("executive handoff failed", "error", err)
		return MsgHandoffFailed
	}
	t.log.Info("booking handed off to executive", "with_quotes", withQuotes)
	e.emailExecutive(ctx, t, Handoff{Summary: summary, Text: text, WithQuotes: withQuotes})

	if withQuotes {
		return HandoffWithQuotesConfirmed(e.cfg.BrandName)
	}
	return HandoffConfirmed(e.cfg.BrandName)
}

func (e *Engine) executiveSummary(ctx context.Context, t *turn, quotes []transcript.Quote) ExecutiveSummary {
	state := t.state
	name := state.CustomerName
	if c := e.lookupCustomer(ctx, t); c != nil && c.Name != "" {
		name = c.Name
	}
	texts := make([]string, 0, len(t.history)+1)
	for _, entry := range t.history {
		texts = append(texts, entry.Text)
	}
	texts = append(texts, t.body)
	return ExecutiveSummary{
		Phone:        t.userID,
		Name:         name,
		Email:        state.Email,
		Package:      state.Package,
		Destination:  state.Destination,
		Travelers:    state.NumberOfPeople,
		StartDate:    state.StartDate,
		EndDate:      state.EndDate,
		Budget:       state.Budget,
		Quotes:       quotes,
		Conversation: strings.Join(texts, " "),
		At:           e.now(),
	}
}

// emailExecutive sends the optional email copy. Failures never change the chat outcome.
func (e *Engine) emailExecutive(ctx context.Context, t *turn, h Handoff) {
	if e.executive == nil {
		return
	}
	if err := e.executive.NotifyExecutive(ctx, h); err != nil {
		t.log.Warn("executive email copy failed", "error", err)
	}
}

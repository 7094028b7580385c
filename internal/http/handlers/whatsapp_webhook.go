package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/events"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/observability/metrics"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/whatsapp"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

type inboundQueue interface {
	Enqueue(ctx context.Context, msg conversation.InboundMessage) <-chan error
}

// WhatsAppWebhookConfig wires WhatsAppWebhookHandler.
type WhatsAppWebhookConfig struct {
	Queue       inboundQueue
	VerifyToken string
	AppSecret   string
	// Processed remembers delivered message ids; nil keeps them in memory
	// for DedupeTTL.
	Processed events.Marker
	DedupeTTL time.Duration
	Logger    *logging.Logger
	Metrics   *metrics.BotMetrics
}

// WhatsAppWebhookHandler receives Cloud API webhooks.
type WhatsAppWebhookHandler struct {
	queue       inboundQueue
	verifyToken string
	appSecret   string
	processed   events.Marker
	logger      *logging.Logger
	metrics     *metrics.BotMetrics
}

// NewWhatsAppWebhookHandler builds the handler.
func NewWhatsAppWebhookHandler(cfg WhatsAppWebhookConfig) *WhatsAppWebhookHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Processed == nil {
		cfg.Processed = events.NewMemoryProcessedStore(cfg.DedupeTTL)
	}
	return &WhatsAppWebhookHandler{
		queue:       cfg.Queue,
		verifyToken: cfg.VerifyToken,
		appSecret:   cfg.AppSecret,
		processed:   cfg.Processed,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}
}

// Verify answers Meta's subscription handshake.
// GET /webhook
func (h *WhatsAppWebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if h.verifyToken == "" || q.Get("hub.mode") != "subscribe" || q.Get("hub.verify_token") != h.verifyToken {
		h.logger.Warn("webhook verification rejected", "mode", q.Get("hub.mode"))
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, q.Get("hub.challenge"))
}

// Events accepts message and status notifications. Text messages are queued
// per sender and the request is acknowledged without waiting for replies.
// POST /webhook
func (h *WhatsAppWebhookHandler) Events(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "conversation service not configured")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := whatsapp.VerifySignature(h.appSecret, r.Header.Get(whatsapp.SignatureHeader), body); err != nil {
		h.logger.Warn("invalid whatsapp webhook signature", "error", err)
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}
	events, err := whatsapp.ParseWebhook(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	queued, refused := 0, 0
	for _, msg := range events.Messages {
		if msg.From == "" {
			continue
		}
		if msg.MessageID != "" {
			fresh, err := h.processed.MarkProcessed(r.Context(), "whatsapp", msg.MessageID)
			if err != nil {
				// Answering twice beats dropping the message.
				h.logger.Warn("dedupe check failed", "message_id", msg.MessageID, "error", err)
			} else if !fresh {
				h.logger.Debug("duplicate whatsapp message ignored", "message_id", msg.MessageID)
				continue
			}
		}
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		done := h.queue.Enqueue(r.Context(), conversation.InboundMessage{
			From:      msg.From,
			Body:      msg.Body,
			MessageID: msg.MessageID,
			Timestamp: ts,
		})
		// A closed queue answers before Enqueue returns; anything else is still running.
		select {
		case err := <-done:
			if errors.Is(err, conversation.ErrSerializerClosed) {
				h.release(r.Context(), msg.MessageID)
				refused++
				continue
			}
			h.logTurn(msg.From, msg.MessageID, err)
		default:
			go func(from, id string) { h.logTurn(from, id, <-done) }(msg.From, msg.MessageID)
		}
		queued++
	}
	for _, st := range events.Statuses {
		h.logger.Info("whatsapp delivery status",
			"message_id", st.MessageID,
			"status", st.Status,
			"user_id", logging.RedactPhone(st.RecipientID),
		)
	}
	if events.Skipped > 0 {
		h.logger.Debug("non-text whatsapp messages skipped", "count", events.Skipped)
	}
	h.metrics.ObserveWebhookLatency("whatsapp", time.Since(start))
	if refused > 0 {
		// Non-2xx makes Meta redeliver the refused messages.
		h.logger.Warn("whatsapp messages refused while shutting down", "count", refused)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "queued": queued})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "queued": queued})
}

// release forgets a message id that was never handled.
func (h *WhatsAppWebhookHandler) release(ctx context.Context, messageID string) {
	if messageID == "" {
		return
	}
	if err := h.processed.Unmark(context.WithoutCancel(ctx), "whatsapp", messageID); err != nil {
		h.logger.Warn("dedupe release failed", "message_id", messageID, "error", err)
	}
}

func (h *WhatsAppWebhookHandler) logTurn(from, messageID string, err error) {
	if err != nil {
		h.logger.Error("conversation turn failed",
			"user_id", logging.RedactPhone(from),
			"message_id", messageID,
			"error", err,
		)
	}
}

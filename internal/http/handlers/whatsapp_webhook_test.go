package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/events"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/whatsapp"
)

const inboundPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{"changes": [{"field": "messages", "value": {
    "contacts": [{"wa_id": "919876543210", "profile": {"name": "Asha"}}],
    "messages": [{"id": "wamid.IN1", "from": "919876543210", "timestamp": "1760000000", "type": "text", "text": {"body": "Hi"}}],
    "statuses": [{"id": "wamid.OUT", "status": "read", "timestamp": "1760000005", "recipient_id": "919876543210"}]
  }}]}]
}`

func TestWhatsAppVerify(t *testing.T) {
	h := NewWhatsAppWebhookHandler(WhatsAppWebhookConfig{VerifyToken: "verify-me"})

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.Verify(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "12345" {
		t.Fatalf("expected challenge echo, got %d %q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec = httptest.NewRecorder()
	h.Verify(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	unconfigured := NewWhatsAppWebhookHandler(WhatsAppWebhookConfig{})
	req = httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=&hub.challenge=1", nil)
	rec = httptest.NewRecorder()
	unconfigured.Verify(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without a verify token, got %d", rec.Code)
	}
}

func TestWhatsAppEventsQueuesTextMessages(t *testing.T) {
	queue := &stubQueue{}
	h := NewWhatsAppWebhookHandler(WhatsAppWebhookConfig{Queue: queue, AppSecret: "app-secret"})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundPayload))
	req.Header.Set(whatsapp.SignatureHeader, whatsapp.Sign("app-secret", []byte(inboundPayload)))
	rec := httptest.NewRecorder()
	h.Events(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	msgs := queue.snapshot()
	if len(msgs) != 1 {
		t.Fatalf("expected one queued message, got %d", len(msgs))
	}
	if msgs[0].From != "919876543210" || msgs[0].Body != "Hi" || msgs[0].MessageID != "wamid.IN1" {
		t.Fatalf("unexpected message %#v", msgs[0])
	}
	if msgs[0].Timestamp.Unix() != 1760000000 {
		t.Fatalf("unexpected timestamp %v", msgs[0].Timestamp)
	}

	// Meta redelivers on slow acknowledgements; the same id must not run twice.
	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundPayload))
	req.Header.Set(whatsapp.SignatureHeader, whatsapp.Sign("app-secret", []byte(inboundPayload)))
	rec = httptest.NewRecorder()
	h.Events(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on redelivery, got %d", rec.Code)
	}
	if got := len(queue.snapshot()); got != 1 {
		t.Fatalf("expected duplicate to be ignored, got %d messages", got)
	}
}

func TestWhatsAppEventsRejectsBadSignature(t *testing.T) {
	queue := &stubQueue{}
	h := NewWhatsAppWebhookHandler(WhatsAppWebhookConfig{Queue: queue, AppSecret: "app-secret"})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundPayload))
	req.Header.Set(whatsapp.SignatureHeader, whatsapp.Sign("other", []byte(inboundPayload)))
	rec := httptest.NewRecorder()
	h.Events(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(queue.snapshot()) != 0 {
		t.Fatalf("expected nothing queued")
	}
}

func TestWhatsAppEventsErrors(t *testing.T) {
	h := NewWhatsAppWebhookHandler(WhatsAppWebhookConfig{Queue: &stubQueue{err: errors.New("turn failed")}})
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Events(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	// A failed turn is logged; the webhook is still acknowledged.
	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundPayload))
	rec = httptest.NewRecorder()
	h.Events(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	noQueue := NewWhatsAppWebhookHandler(WhatsAppWebhookConfig{})
	rec = httptest.NewRecorder()
	noQueue.Events(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundPayload)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

type failingMarker struct{}

func (failingMarker) MarkProcessed(context.Context, string, string) (bool, error) {
	return false, errors.New("redis down")
}

func (failingMarker) Unmark(context.Context, string, string) error {
	return errors.New("redis down")
}

func TestWhatsAppEventsDedupeFailureStillQueues(t *testing.T) {
	queue := &stubQueue{}
	h := NewWhatsAppWebhookHandler(WhatsAppWebhookConfig{Queue: queue, Processed: failingMarker{}})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundPayload))
	rec := httptest.NewRecorder()
	h.Events(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := len(queue.snapshot()); got != 1 {
		t.Fatalf("expected message to be queued, got %d", got)
	}
}

func TestWhatsAppEventsClosedQueueReleasesMessageForRedelivery(t *testing.T) {
	queue := &stubQueue{err: conversation.ErrSerializerClosed}
	processed := events.NewMemoryProcessedStore(time.Hour)
	h := NewWhatsAppWebhookHandler(WhatsAppWebhookConfig{Queue: queue, Processed: processed})

	rec := httptest.NewRecorder()
	h.Events(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundPayload)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while shutting down, got %d", rec.Code)
	}

	// After restart Meta redelivers the same id; it must be handled, not skipped.
	queue.err = nil
	rec = httptest.NewRecorder()
	h.Events(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundPayload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on redelivery, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"queued":1`) {
		t.Fatalf("expected redelivered message to be queued, got %s", rec.Body.String())
	}
	if got := len(queue.snapshot()); got != 2 {
		t.Fatalf("expected two enqueue attempts, got %d", got)
	}
}

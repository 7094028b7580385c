package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the app-secret HMAC of the webhook body.
const SignatureHeader = "X-Hub-Signature-256"

// ErrInvalidSignature is returned when a webhook signature does not match.
var ErrInvalidSignature = errors.New("whatsapp: invalid webhook signature")

// VerifySignature checks a "sha256=<hex>" header against body.
// An empty secret disables verification.
func VerifySignature(secret, header string, body []byte) error {
	if strings.TrimSpace(secret) == "" {
		return nil
	}
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "sha256=") {
		return ErrInvalidSignature
	}
	provided, err := hex.DecodeString(strings.TrimPrefix(header, "sha256="))
	if err != nil {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the header value Meta would send for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					ID        string `json:"id"`
					From      string `json:"from"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      *struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
				Statuses []struct {
					ID          string `json:"id"`
					Status      string `json:"status"`
					Timestamp   string `json:"timestamp"`
					RecipientID string `json:"recipient_id"`
				} `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// InboundText is a text message delivered by the webhook.
type InboundText struct {
	MessageID   string
	From        string
	ProfileName string
	Body        string
	Timestamp   time.Time
}

// StatusUpdate is a delivery receipt for an outbound message.
type StatusUpdate struct {
	MessageID   string
	Status      string
	RecipientID string
	Timestamp   time.Time
}

// Events groups everything a single webhook delivery carried.
type Events struct {
	Messages []InboundText
	Statuses []StatusUpdate
	// Skipped counts non-text messages that were ignored.
	Skipped int
}

// ParseWebhook decodes a Cloud API webhook body. Only text messages are
// surfaced; media and interactive messages are counted in Skipped.
func ParseWebhook(body []byte) (Events, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Events{}, fmt.Errorf("whatsapp: decode webhook: %w", err)
	}
	var events Events
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			names := make(map[string]string, len(change.Value.Contacts))
			for _, contact := range change.Value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text == nil || strings.TrimSpace(msg.Text.Body) == "" {
					events.Skipped++
					continue
				}
				from := NormalizePhone(msg.From)
				events.Messages = append(events.Messages, InboundText{
					MessageID:   msg.ID,
					From:        from,
					ProfileName: names[msg.From],
					Body:        msg.Text.Body,
					Timestamp:   parseUnix(msg.Timestamp),
				})
			}
			for _, st := range change.Value.Statuses {
				events.Statuses = append(events.Statuses, StatusUpdate{
					MessageID:   st.ID,
					Status:      st.Status,
					RecipientID: NormalizePhone(st.RecipientID),
					Timestamp:   parseUnix(st.Timestamp),
				})
			}
		}
	}
	return events, nil
}

func parseUnix(raw string) time.Time {
	secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

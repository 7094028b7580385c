package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/bookings"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/whatsapp"
)

type stubQueue struct {
	mu       sync.Mutex
	messages []conversation.InboundMessage
	err      error
}

func (q *stubQueue) Enqueue(ctx context.Context, msg conversation.InboundMessage) <-chan error {
	q.mu.Lock()
	q.messages = append(q.messages, msg)
	q.mu.Unlock()
	ch := make(chan error, 1)
	ch <- q.err
	return ch
}

func (q *stubQueue) snapshot() []conversation.InboundMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]conversation.InboundMessage(nil), q.messages...)
}

type notification struct {
	userID string
	text   string
}

type stubService struct {
	quotes    []transcript.QuoteRecord
	quoteUser string
	sent      []notification
	err       error
	snapshot  conversation.Snapshot
	forgotten []string
}

func (s *stubService) IngestQuotes(ctx context.Context, userID string, record transcript.QuoteRecord) (conversation.Receipt, error) {
	if len(record.Quotes) == 0 {
		return conversation.Receipt{}, conversation.ErrNoQuotes
	}
	if s.err != nil {
		return conversation.Receipt{}, s.err
	}
	s.quoteUser = userID
	s.quotes = append(s.quotes, record)
	return conversation.Receipt{MessageID: "wamid.quote", Status: "accepted"}, nil
}

func (s *stubService) Notify(ctx context.Context, userID, text string) (conversation.Receipt, error) {
	if s.err != nil {
		return conversation.Receipt{}, s.err
	}
	s.sent = append(s.sent, notification{userID: userID, text: text})
	return conversation.Receipt{MessageID: "wamid.notify", Status: "accepted"}, nil
}

func (s *stubService) Snapshot(ctx context.Context, userID string) (conversation.Snapshot, error) {
	if s.err != nil {
		return conversation.Snapshot{}, s.err
	}
	snap := s.snapshot
	snap.UserID = userID
	return snap, nil
}

func (s *stubService) Forget(ctx context.Context, userID string) error {
	if s.err != nil {
		return s.err
	}
	s.forgotten = append(s.forgotten, userID)
	return nil
}

type stubStatus struct {
	err error
}

func (s stubStatus) MessageStatus(ctx context.Context, messageID string) (*whatsapp.MessageStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &whatsapp.MessageStatus{ID: messageID, Status: "delivered"}, nil
}

type stubBookings struct {
	phone string
	limit int
	rows  []bookings.Booking
}

func (s *stubBookings) ListByPhone(ctx context.Context, phone string, limit int) ([]bookings.Booking, error) {
	if phone == "000" {
		return nil, errors.New("db down")
	}
	s.phone = phone
	s.limit = limit
	return s.rows, nil
}

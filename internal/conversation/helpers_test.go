package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

const testUser = "919876543210"

var errProviderDown = errors.New("provider down")

type sentMessage struct {
	To   string
	Body string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (m *fakeMessenger) SendText(_ context.Context, to, body string) (Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Receipt{}, m.err
	}
	m.sent = append(m.sent, sentMessage{To: to, Body: body})
	return Receipt{MessageID: fmt.Sprintf("wamid.%d", len(m.sent)), Status: "sent"}, nil
}

func (m *fakeMessenger) to(recipient string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sent {
		if s.To == recipient {
			out = append(out, s.Body)
		}
	}
	return out
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func failingGenerator() Generator {
	return generatorFunc(func(context.Context, string) (string, error) { return "", errProviderDown })
}

func fixedGenerator(text string) Generator {
	return generatorFunc(func(context.Context, string) (string, error) { return text, nil })
}

type fakeBackend struct {
	mu          sync.Mutex
	customers   []backend.Customer
	lookupErr   error
	inquiryErr  error
	dispatchErr error
	inquiries   []backend.VendorInquiry
	daywise     []backend.BookingRecord
	single      []backend.BookingRecord
}

func (b *fakeBackend) GetCustomerData(context.Context, string) ([]backend.Customer, error) {
	return b.customers, b.lookupErr
}

func (b *fakeBackend) SendVendorEmail(_ context.Context, inquiry backend.VendorInquiry) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inquiryErr != nil {
		return nil, b.inquiryErr
	}
	b.inquiries = append(b.inquiries, inquiry)
	return json.RawMessage(`{"status":"ok"}`), nil
}

func (b *fakeBackend) SendBookingEmail(_ context.Context, record backend.BookingRecord) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dispatchErr != nil {
		return nil, b.dispatchErr
	}
	b.single = append(b.single, record)
	return json.RawMessage(`{"status":"ok"}`), nil
}

func (b *fakeBackend) SendDaywiseBookingEmail(_ context.Context, record backend.BookingRecord) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dispatchErr != nil {
		return nil, b.dispatchErr
	}
	b.daywise = append(b.daywise, record)
	return json.RawMessage(`{"status":"ok"}`), nil
}

type fakeSheets struct {
	records []backend.BookingRecord
}

func (s *fakeSheets) AppendBooking(_ context.Context, record backend.BookingRecord) error {
	s.records = append(s.records, record)
	return nil
}

type fakeRecorder struct {
	records []backend.BookingRecord
}

func (r *fakeRecorder) RecordFinalized(_ context.Context, record backend.BookingRecord) error {
	r.records = append(r.records, record)
	return nil
}

type fakeExecutive struct {
	handoffs []Handoff
}

func (e *fakeExecutive) NotifyExecutive(_ context.Context, h Handoff) error {
	e.handoffs = append(e.handoffs, h)
	return nil
}

type harness struct {
	engine    *Engine
	messenger *fakeMessenger
	store     *transcript.MemoryStore
	backend   *fakeBackend
}

func newHarness(t *testing.T, gen Generator, mutate func(*Config, *Deps)) *harness {
	t.Helper()
	h := &harness{
		messenger: &fakeMessenger{},
		store:     transcript.NewMemoryStore(0),
		backend:   &fakeBackend{},
	}
	cfg := Config{
		BrandName:       "Unravel Experience",
		GreetingMessage: "Welcome to Unravel Experience!",
		ExecutivePhone:  "919000000001",
		DaywiseEmails:   true,
	}
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	deps := Deps{
		Transcripts: h.store,
		Generator:   gen,
		Messenger:   h.messenger,
		Backend:     h.backend,
		Logger:      logging.NewWithWriter(io.Discard, "error"),
		Now:         func() time.Time { return clock },
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}
	engine, err := NewEngine(cfg, deps)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	h.engine = engine
	return h
}

func (h *harness) say(t *testing.T, body string) Result {
	t.Helper()
	res, err := h.engine.HandleMessage(context.Background(), InboundMessage{From: testUser, Body: body})
	if err != nil {
		t.Fatalf("HandleMessage(%q): %v", body, err)
	}
	return res
}

// seedCompleteBooking stores a transcript in which name, start date and party size were all given.
func (h *harness) seedCompleteBooking(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []transcript.Entry{
		transcript.UserEntry("I'm ready to book", at),
		transcript.BotEntry(MsgNameRequest, at),
		transcript.UserEntry("Pratham Rathore", at),
		transcript.BotEntry("Hi Pratham Rathore! When would you like your trip to start? (Please provide the date in DD/MM/YYYY format)", at),
		transcript.UserEntry("23/06/2026", at),
		transcript.BotEntry(MsgPartySizeRequest, at),
		transcript.UserEntry("8", at),
	}
	for _, e := range entries {
		if err := h.store.Append(ctx, testUser, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	h.engine.flows.Put(testUser, FlowState{Stage: StageReadyToFinalize, InBookingProcess: true})
}

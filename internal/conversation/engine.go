// Package conversation is the WhatsApp booking flow: it classifies each inbound
// message, recomputes the booking state from the transcript, decides the reply
// and delivers it.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/booking"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/intent"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/observability/metrics"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// Generator produces free text for a prompt. *llm.Chain satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Backend is the subset of the travel backend the flow calls.
type Backend interface {
	GetCustomerData(ctx context.Context, phone string) ([]backend.Customer, error)
	SendVendorEmail(ctx context.Context, inquiry backend.VendorInquiry) (json.RawMessage, error)
	SendBookingEmail(ctx context.Context, record backend.BookingRecord) (json.RawMessage, error)
	SendDaywiseBookingEmail(ctx context.Context, record backend.BookingRecord) (json.RawMessage, error)
}

// SheetAppender logs complete booking details to a spreadsheet.
type SheetAppender interface {
	AppendBooking(ctx context.Context, record backend.BookingRecord) error
}

// BookingRecorder persists finalized bookings.
type BookingRecorder interface {
	RecordFinalized(ctx context.Context, record backend.BookingRecord) error
}

// ExecutiveNotifier emails a copy of executive handoffs.
type ExecutiveNotifier interface {
	NotifyExecutive(ctx context.Context, h Handoff) error
}

// Config holds the flow's static settings.
type Config struct {
	BrandName       string
	GreetingMessage string
	// ExecutivePhone receives "book my trip" handoffs. Empty disables handoffs.
	ExecutivePhone string
	// DaywiseEmails selects the day-wise vendor dispatch on finalize instead of
	// the single booking email.
	DaywiseEmails bool
	// HistoryWindow caps the transcript entries included in provider prompts.
	HistoryWindow int
}

// Deps are the engine's collaborators. Transcripts, Generator and Messenger are required.
type Deps struct {
	Transcripts transcript.Store
	Generator   Generator
	Messenger   Messenger
	Backend     Backend
	Flows       *FlowStore
	Notices     *NoticeGuard
	Classifier  *intent.Classifier
	Aggregator  *booking.Aggregator
	Catalog     booking.Catalog
	Sheets      SheetAppender
	Bookings    BookingRecorder
	Executive   ExecutiveNotifier
	Logger      *logging.Logger
	Metrics     *metrics.BotMetrics
	Now         func() time.Time
}

// Engine is the flow controller. HandleMessage is not safe to call
// concurrently for the same user; route calls through a Serializer.
type Engine struct {
	cfg         Config
	transcripts transcript.Store
	generator   Generator
	messenger   Messenger
	backend     Backend
	flows       *FlowStore
	notices     *NoticeGuard
	classifier  *intent.Classifier
	aggregator  *booking.Aggregator
	catalog     booking.Catalog
	sheets      SheetAppender
	bookings    BookingRecorder
	executive   ExecutiveNotifier
	logger      *logging.Logger
	metrics     *metrics.BotMetrics
	now         func() time.Time
}

// NewEngine validates deps and fills optional collaborators with defaults.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if deps.Transcripts == nil {
		return nil, errors.New("conversation: transcript store is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("conversation: generator is required")
	}
	if deps.Messenger == nil {
		return nil, errors.New("conversation: messenger is required")
	}
	if cfg.BrandName == "" {
		cfg.BrandName = "Unravel Experience"
	}
	if cfg.GreetingMessage == "" {
		cfg.GreetingMessage = "Welcome to " + cfg.BrandName + "!"
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 20
	}
	e := &Engine{
		cfg:         cfg,
		transcripts: deps.Transcripts,
		generator:   deps.Generator,
		messenger:   deps.Messenger,
		backend:     deps.Backend,
		flows:       deps.Flows,
		notices:     deps.Notices,
		classifier:  deps.Classifier,
		aggregator:  deps.Aggregator,
		catalog:     deps.Catalog,
		sheets:      deps.Sheets,
		bookings:    deps.Bookings,
		executive:   deps.Executive,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		now:         deps.Now,
	}
	if e.flows == nil {
		e.flows = NewFlowStore(0, nil)
	}
	if e.notices == nil {
		e.notices = NewNoticeGuard(0)
	}
	if e.classifier == nil {
		e.classifier = intent.NewClassifier()
	}
	if e.aggregator == nil {
		e.aggregator = booking.NewAggregator(0)
	}
	if len(e.catalog.Packages) == 0 {
		e.catalog = booking.DefaultCatalog()
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// InboundMessage is a text message received from a customer.
type InboundMessage struct {
	From      string
	Body      string
	MessageID string
	Timestamp time.Time
}

// Result describes what a turn produced.
type Result struct {
	Intent  intent.Intent
	Stage   Stage
	Reply   string
	Receipt Receipt
}

type turn struct {
	userID  string
	body    string
	at      time.Time
	history []transcript.Entry
	state   booking.State
	intent  intent.Intent
	flow    FlowState
	log     *logging.Logger

	customerLoaded bool
	customer       *backend.Customer
}

// HandleMessage runs one conversational turn and sends the reply, if any.
// Both the message and the reply are appended to the transcript.
func (e *Engine) HandleMessage(ctx context.Context, msg InboundMessage) (Result, error) {
	userID := strings.TrimSpace(msg.From)
	if userID == "" {
		return Result{}, errors.New("conversation: sender is required")
	}
	body := strings.TrimSpace(msg.Body)
	if body == "" {
		return Result{}, nil
	}
	at := msg.Timestamp
	if at.IsZero() {
		at = e.now()
	}

	t := &turn{
		userID: userID,
		body:   body,
		at:     at,
		flow:   e.flows.Get(userID),
		log:    e.logger.WithUser(userID),
	}
	history, err := e.transcripts.List(ctx, userID)
	if err != nil {
		t.log.Warn("transcript unavailable, continuing without history", "error", err)
	}
	t.history = history
	t.state = e.aggregator.Aggregate(userID, history, body)
	t.intent = e.classifier.Classify(intent.Input{Message: body, PackageSelected: t.state.Package != ""})
	e.metrics.ObserveInbound(string(t.intent))
	t.log.Info("inbound message classified", "intent", t.intent, "stage", t.flow.Stage)

	reply := e.route(ctx, t)

	t.flow.UpdatedAt = e.now()
	e.flows.Put(userID, t.flow)

	if err := e.transcripts.Append(ctx, userID, transcript.UserEntry(body, at)); err != nil {
		t.log.Error("failed to append user message", "error", err)
	}
	res := Result{Intent: t.intent, Stage: t.flow.Stage, Reply: reply}
	if reply == "" {
		return res, nil
	}
	if err := e.transcripts.Append(ctx, userID, transcript.BotEntry(reply, e.now())); err != nil {
		t.log.Error("failed to append bot reply", "error", err)
	}
	receipt, err := e.send(ctx, userID, reply)
	if err != nil {
		return res, err
	}
	res.Receipt = receipt
	return res, nil
}

func (e *Engine) route(ctx context.Context, t *turn) string {
	switch t.intent {
	case intent.Greeting:
		return e.greet(ctx, t)
	case intent.PriceInquiry:
		return e.priceInquiry(ctx, t)
	case intent.Finalize:
		return e.finalize(ctx, t)
	case intent.BookTrip:
		return e.handoff(ctx, t, false)
	case intent.BookTripNow:
		return e.handoff(ctx, t, true)
	case intent.TravelDocument:
		return e.generateOr(ctx, t, travelDocumentPrompt(e.promptContext(t)), MsgTravelDocumentFallback)
	case intent.PackageQuestion:
		return e.answerPackageQuestion(ctx, t)
	case intent.BookingInfo:
		e.logToSheet(ctx, t)
		return e.converse(ctx, t)
	default:
		return e.converse(ctx, t)
	}
}

func (e *Engine) greet(ctx context.Context, t *turn) string {
	name := ""
	if c := e.lookupCustomer(ctx, t); c != nil {
		name = c.Name
	}
	return Greeting(e.cfg.GreetingMessage, e.cfg.BrandName, name)
}

var bookingStartRE = regexp.MustCompile(`(?i)\bready (?:for this package|to book)\b`)

// converse drives booking collection, or hands free conversation to the provider.
func (e *Engine) converse(ctx context.Context, t *turn) string {
	if !t.flow.InBookingProcess && bookingStartRE.MatchString(t.body) {
		t.flow.InBookingProcess = true
		t.flow.Stage = StageCollecting
		return MsgNameRequest
	}
	if t.flow.InBookingProcess {
		return e.collect(ctx, t)
	}

	text, err := e.generator.Generate(ctx, generalPrompt(e.promptContext(t)))
	if err != nil {
		t.log.Warn("all providers failed", "error", err)
		return e.apology(t)
	}
	return text
}

// collect asks for the next missing field or, once complete, shows the summary.
func (e *Engine) collect(ctx context.Context, t *turn) string {
	missing := t.state.Missing(booking.ChatRequired...)
	if len(missing) == 0 {
		t.flow.Stage = StageReadyToFinalize
		return FormatBookingSummary(t.state)
	}
	t.flow.Stage = StageCollecting
	next := missing[0]
	fallback := FieldPrompt(next, t.state)

	text, err := e.generator.Generate(ctx, collectPrompt(e.promptContext(t), next))
	if err != nil {
		t.log.Warn("providers failed while collecting, using fixed prompt", "field", next, "error", err)
		return fallback
	}
	if !hasFieldCue(text, next) {
		t.log.Debug("provider phrasing lacks field cue, using fixed prompt", "field", next)
		return fallback
	}
	return text
}

func (e *Engine) answerPackageQuestion(ctx context.Context, t *turn) string {
	pkg := e.selectedPackage(t.state)
	topic := intent.PackageTopic(t.body)
	return e.generateOr(ctx, t, packageQuestionPrompt(e.promptContext(t), pkg, topic), PackageTopicReply(pkg, topic))
}

func (e *Engine) generateOr(ctx context.Context, t *turn, prompt, fallback string) string {
	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		t.log.Warn("providers failed, using template", "intent", t.intent, "error", err)
		return fallback
	}
	return text
}

// apology returns the generic failure notice once per user until the guard forgets it.
func (e *Engine) apology(t *turn) string {
	if e.notices.Claim(t.userID, MsgApology) {
		return MsgApology
	}
	t.log.Info("duplicate failure notice suppressed")
	return ""
}

func (e *Engine) promptContext(t *turn) promptContext {
	return promptContext{
		brand:   e.cfg.BrandName,
		catalog: e.catalog,
		history: transcript.Tail(t.history, e.cfg.HistoryWindow),
		message: t.body,
		state:   t.state,
	}
}

// selectedPackage resolves the state's package label against the catalog.
func (e *Engine) selectedPackage(state booking.State) booking.Package {
	for _, p := range e.catalog.Packages {
		if state.Package != "" && (p.Label() == state.Package || strings.EqualFold(p.ID, state.Package)) {
			return p
		}
	}
	if p, ok := e.catalog.Find(booking.LivePackage.ID); ok {
		return p
	}
	return e.catalog.Packages[0]
}

func (e *Engine) lookupCustomer(ctx context.Context, t *turn) *backend.Customer {
	if t.customerLoaded {
		return t.customer
	}
	t.customerLoaded = true
	if e.backend == nil {
		return nil
	}
	customers, err := e.backend.GetCustomerData(ctx, t.userID)
	if err != nil {
		t.log.Warn("customer lookup failed", "error", err)
		return nil
	}
	if len(customers) == 0 {
		return nil
	}
	t.customer = &customers[0]
	return t.customer
}

func (e *Engine) send(ctx context.Context, to, text string) (Receipt, error) {
	receipt, err := e.messenger.SendText(ctx, to, text)
	if err != nil {
		e.metrics.ObserveOutbound("failed")
		return Receipt{}, fmt.Errorf("conversation: send message: %w", err)
	}
	e.metrics.ObserveOutbound("sent")
	return receipt, nil
}

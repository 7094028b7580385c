package bootstrap

import (
	"fmt"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/booking"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/bookings"
	appconfig "github.com/PrathamRathore123/Whatsapp-Bot/internal/config"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/notify"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/observability/metrics"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/sheets"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// Components are the already-built collaborators of the conversation flow.
// Optional pointers may be nil.
type Components struct {
	Transcripts transcript.Store
	Generator   conversation.Generator
	Messenger   conversation.Messenger
	Catalog     booking.Catalog
	Backend     *backend.Client
	Sheets      *sheets.Appender
	Bookings    *bookings.Service
	Executive   *notify.ExecutiveMailer
}

// BuildConversationService assembles the engine, its per-user queue and the
// service facade used by the HTTP handlers.
func BuildConversationService(cfg *appconfig.Config, c Components, logger *logging.Logger, m *metrics.BotMetrics) (*conversation.Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	deps := conversation.Deps{
		Transcripts: c.Transcripts,
		Generator:   c.Generator,
		Messenger:   c.Messenger,
		Catalog:     c.Catalog,
		Flows: conversation.NewFlowStore(cfg.FlowStateTTL, func(userID string) {
			m.ObserveFlowEviction()
			logger.Debug("booking flow cleared", "user", logging.RedactPhone(userID))
		}),
		Notices: conversation.NewNoticeGuard(cfg.FailureNoticeTTL),
		Logger:  logger,
		Metrics: m,
	}
	// Interface fields stay nil unless the collaborator exists.
	if c.Backend != nil {
		deps.Backend = c.Backend
	}
	if c.Sheets != nil {
		deps.Sheets = c.Sheets
	}
	if c.Bookings != nil {
		deps.Bookings = c.Bookings
	}
	if c.Executive != nil {
		deps.Executive = c.Executive
	}

	engine, err := conversation.NewEngine(conversation.Config{
		BrandName:       cfg.BrandName,
		GreetingMessage: cfg.GreetingMessage,
		ExecutivePhone:  cfg.ExecutivePhone,
		DaywiseEmails:   cfg.BackendDaywiseEmail,
	}, deps)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return conversation.NewService(engine, conversation.NewSerializer(logger, m), logger)
}

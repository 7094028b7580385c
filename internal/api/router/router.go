package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/http/handlers"
	httpmiddleware "github.com/PrathamRathore123/Whatsapp-Bot/internal/http/middleware"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	WhatsApp        *handlers.WhatsAppWebhookHandler
	BackendWebhooks *handlers.BackendWebhookHandler
	Admin           *handlers.AdminHandler
	MetricsHandler  http.Handler

	// Backend callers authenticate with the shared token or an HS256 JWT.
	BackendAuthToken string
	BackendJWTSecret string

	// WebhookRPS limits unauthenticated webhook calls per client IP; zero disables it.
	WebhookRPS   float64
	WebhookBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Get("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.WhatsApp != nil {
		r.Group(func(public chi.Router) {
			if cfg.WebhookRPS > 0 {
				public.Use(httpmiddleware.RateLimit(cfg.WebhookRPS, cfg.WebhookBurst))
			}
			public.Get("/webhook", cfg.WhatsApp.Verify)
			public.Post("/webhook", cfg.WhatsApp.Events)
		})
	}

	r.Group(func(backend chi.Router) {
		backend.Use(httpmiddleware.BackendAuth(cfg.BackendAuthToken, cfg.BackendJWTSecret))
		if cfg.BackendWebhooks != nil {
			backend.Post("/api/webhook/vendor-quote", cfg.BackendWebhooks.VendorQuote)
			backend.Post("/webhook/booking-confirmation", cfg.BackendWebhooks.BookingConfirmation)
			backend.Post("/webhook/customer-update", cfg.BackendWebhooks.CustomerUpdate)
			backend.Post("/webhook/inquiry-response", cfg.BackendWebhooks.InquiryResponse)
			backend.Get("/api/message-status/{messageID}", cfg.BackendWebhooks.MessageStatus)
		}
		if cfg.Admin != nil {
			backend.Get("/api/conversations/{userID}", cfg.Admin.GetConversation)
			backend.Delete("/api/conversations/{userID}", cfg.Admin.DeleteConversation)
			backend.Get("/api/bookings", cfg.Admin.ListBookings)
		}
	})

	return r
}

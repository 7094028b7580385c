package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/booking"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/bookings"
	appconfig "github.com/PrathamRathore123/Whatsapp-Bot/internal/config"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/notify"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/sheets"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// BuildBackend returns the travel backend client, or nil when BACKEND_URL is unset.
func BuildBackend(cfg *appconfig.Config, logger *logging.Logger) (*backend.Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.BackendURL) == "" {
		return nil, nil
	}
	client, err := backend.New(backend.Config{BaseURL: cfg.BackendURL, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: backend client: %w", err)
	}
	return client, nil
}

// BuildCatalog loads TRAVEL_PACKAGES_FILE, falling back to the built-in packages.
func BuildCatalog(cfg *appconfig.Config, logger *logging.Logger) booking.Catalog {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil || strings.TrimSpace(cfg.TravelPackagesFile) == "" {
		return booking.DefaultCatalog()
	}
	catalog, err := booking.LoadCatalog(cfg.TravelPackagesFile)
	if err != nil {
		logger.Warn("package catalog not loaded; using defaults", "path", cfg.TravelPackagesFile, "error", err)
		return booking.DefaultCatalog()
	}
	logger.Info("package catalog loaded", "packages", len(catalog.Packages))
	return catalog
}

// BuildEmailTransport picks the EMAIL_PROVIDER backend. It returns nil when
// the selected provider is not configured.
func BuildEmailTransport(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.Transport {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "ses":
		if cfg.SESFromEmail == "" {
			return nil
		}
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("ses disabled", "error", err)
			return nil
		}
		return notify.NewSESTransport(sesv2.NewFromConfig(awsCfg), notify.Mailbox{
			Name:    cfg.SESFromName,
			Address: cfg.SESFromEmail,
		})
	case "stub":
		return notify.NewLogTransport(logger)
	default:
		transport := notify.NewSendGridTransport(cfg.SendGridAPIKey, notify.Mailbox{
			Name:    cfg.SendGridFromName,
			Address: cfg.SendGridFromEmail,
		})
		if transport == nil {
			return nil
		}
		return transport
	}
}

// BuildExecutiveMailer sends handoff copies to EXECUTIVE_EMAIL over transport.
func BuildExecutiveMailer(transport notify.Transport, cfg *appconfig.Config, logger *logging.Logger) *notify.ExecutiveMailer {
	if cfg == nil {
		return nil
	}
	return notify.NewExecutiveMailer(transport, notify.Mailbox{Name: "Travel Executive", Address: cfg.ExecutiveEmail}, logger)
}

// BuildSheetAppender returns nil when GOOGLE_SHEETS_ID is unset.
func BuildSheetAppender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*sheets.Appender, error) {
	if cfg == nil || strings.TrimSpace(cfg.GoogleSheetsID) == "" {
		return nil, nil
	}
	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}
	appender, err := sheets.NewAppender(ctx, sheets.Config{
		SpreadsheetID: cfg.GoogleSheetsID,
		Range:         cfg.GoogleSheetsRange,
		ClientOptions: opts,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: sheets: %w", err)
	}
	return appender, nil
}

// BuildBookings returns nil without a database pool.
func BuildBookings(pool *pgxpool.Pool, logger *logging.Logger) *bookings.Service {
	if pool == nil {
		return nil
	}
	return bookings.NewService(bookings.NewRepository(pool), logger)
}

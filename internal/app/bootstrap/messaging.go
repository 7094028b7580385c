package bootstrap

import (
	"fmt"

	appconfig "github.com/PrathamRathore123/Whatsapp-Bot/internal/config"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/whatsapp"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

func metaConfig(cfg *appconfig.Config, logger *logging.Logger) whatsapp.Config {
	return whatsapp.Config{
		BaseURL:       cfg.WhatsAppAPIBaseURL,
		Token:         cfg.WhatsAppToken,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		SendRPS:       cfg.WhatsAppSendRPS,
		Logger:        logger,
	}
}

// BuildMessenger selects the outbound WhatsApp provider. The second return
// value names the provider that was chosen.
func BuildMessenger(cfg *appconfig.Config, logger *logging.Logger) (conversation.Messenger, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	messenger, provider, reason := whatsapp.BuildMessenger(whatsapp.ProviderSelectionConfig{
		Preference:       cfg.WhatsAppProvider,
		Meta:             metaConfig(cfg, logger),
		TwilioAccountSID: cfg.TwilioAccountSID,
		TwilioAuthToken:  cfg.TwilioAuthToken,
		TwilioFromNumber: cfg.TwilioWhatsAppFrom,
	}, logger)
	if messenger == nil {
		return nil, "", fmt.Errorf("bootstrap: no whatsapp provider: %s", reason)
	}
	logger.Info("whatsapp messenger ready", "provider", provider)
	return messenger, provider, nil
}

// BuildStatusClient returns the Graph API client used for delivery status
// lookups, or nil when Meta credentials are missing.
func BuildStatusClient(cfg *appconfig.Config, logger *logging.Logger) *whatsapp.Client {
	if cfg == nil {
		return nil
	}
	client, err := whatsapp.New(metaConfig(cfg, logger))
	if err != nil {
		return nil
	}
	return client
}

package whatsapp

import (
	"fmt"
	"strings"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

const (
	// ProviderAuto tries the Meta Cloud API first, then Twilio.
	ProviderAuto = "auto"
	// ProviderMeta forces the Cloud API sender when credentials exist.
	ProviderMeta = "meta"
	// ProviderTwilio forces the Twilio sender when credentials exist.
	ProviderTwilio = "twilio"
)

// ProviderSelectionConfig captures the credentials required to build outbound messengers.
type ProviderSelectionConfig struct {
	Preference       string
	Meta             Config
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// BuildMessenger instantiates a Messenger based on the preferred provider.
// It returns the messenger, the provider that was selected, and a reason when no provider could be initialized.
func BuildMessenger(cfg ProviderSelectionConfig, logger *logging.Logger) (conversation.Messenger, string, string) {
	if logger == nil {
		logger = logging.Default()
	}
	preference := strings.ToLower(strings.TrimSpace(cfg.Preference))
	if preference == "" {
		preference = ProviderAuto
	}

	missing := map[string]string{}
	var metaMessenger conversation.Messenger
	var twilioMessenger conversation.Messenger

	if cfg.Meta.Logger == nil {
		cfg.Meta.Logger = logger
	}
	if client, err := New(cfg.Meta); err == nil {
		metaMessenger = client
	} else {
		var reasons []string
		if cfg.Meta.Token == "" {
			reasons = append(reasons, "WHATSAPP_TOKEN missing")
		}
		if cfg.Meta.PhoneNumberID == "" {
			reasons = append(reasons, "WHATSAPP_PHONE_NUMBER_ID missing")
		}
		if len(reasons) == 0 {
			reasons = append(reasons, err.Error())
		}
		missing[ProviderMeta] = strings.Join(reasons, ", ")
	}

	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		twilioMessenger = NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
	} else {
		var reasons []string
		if cfg.TwilioAccountSID == "" {
			reasons = append(reasons, "TWILIO_ACCOUNT_SID missing")
		}
		if cfg.TwilioAuthToken == "" {
			reasons = append(reasons, "TWILIO_AUTH_TOKEN missing")
		}
		if cfg.TwilioFromNumber == "" {
			reasons = append(reasons, "TWILIO_WHATSAPP_FROM missing")
		}
		missing[ProviderTwilio] = strings.Join(reasons, ", ")
	}

	if preference != ProviderAuto {
		if preference == ProviderMeta && metaMessenger != nil {
			return metaMessenger, ProviderMeta, ""
		}
		if preference == ProviderTwilio && twilioMessenger != nil {
			return twilioMessenger, ProviderTwilio, ""
		}
		reason := missing[preference]
		if reason == "" {
			reason = fmt.Sprintf("%s messenger not configured", preference)
		}
		return nil, "", reason
	}

	if metaMessenger != nil && twilioMessenger != nil {
		return NewFailoverMessenger(metaMessenger, ProviderMeta, twilioMessenger, ProviderTwilio, logger), ProviderMeta + "+" + ProviderTwilio, ""
	}
	if metaMessenger != nil {
		return metaMessenger, ProviderMeta, ""
	}
	if twilioMessenger != nil {
		return twilioMessenger, ProviderTwilio, ""
	}

	var reasons []string
	for _, provider := range []string{ProviderMeta, ProviderTwilio} {
		if msg := missing[provider]; msg != "" {
			reasons = append(reasons, fmt.Sprintf("%s: %s", provider, msg))
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "no WhatsApp providers configured")
	}
	return nil, "", strings.Join(reasons, "; ")
}

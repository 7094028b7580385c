package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "WHATSAPP_PROVIDER", "WEBHOOK_VERIFY_TOKEN", "WEBHOOK_AUTH_TOKEN", "LLM_PROVIDER_ORDER", "FLOW_STATE_TTL", "BACKEND_DAYWISE_EMAILS", "WHATSAPP_SEND_RPS", "BRAND_NAME"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" || cfg.IsProduction() {
		t.Fatalf("expected development env, got %s", cfg.Env)
	}
	if cfg.WhatsAppProvider != "auto" {
		t.Fatalf("expected auto provider, got %s", cfg.WhatsAppProvider)
	}
	if !reflect.DeepEqual(cfg.LLMProviderOrder, []string{"gemini", "groq", "ollama"}) {
		t.Fatalf("unexpected provider order %v", cfg.LLMProviderOrder)
	}
	if cfg.FlowStateTTL != 30*time.Minute {
		t.Fatalf("expected default flow ttl, got %s", cfg.FlowStateTTL)
	}
	if !cfg.BackendDaywiseEmail {
		t.Fatalf("expected day-wise emails enabled by default")
	}
	if cfg.WhatsAppSendRPS != 20 {
		t.Fatalf("expected default send rate, got %v", cfg.WhatsAppSendRPS)
	}
	if cfg.BrandName != "Unravel Experience" {
		t.Fatalf("unexpected brand %q", cfg.BrandName)
	}
	if cfg.TranscriptMaxEntries != 50 {
		t.Fatalf("expected 50 transcript entries, got %d", cfg.TranscriptMaxEntries)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("WHATSAPP_PROVIDER", " Twilio ")
	t.Setenv("WEBHOOK_AUTH_TOKEN", "shared")
	t.Setenv("WEBHOOK_VERIFY_TOKEN", "")
	t.Setenv("LLM_PROVIDER_ORDER", "Groq, ,bedrock")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("BACKEND_DAYWISE_EMAILS", "false")
	t.Setenv("WHATSAPP_SEND_RPS", "2.5")
	t.Setenv("FAILURE_NOTICE_TTL", "bogus")
	cfg := Load()
	if cfg.Port != "9090" || !cfg.IsProduction() {
		t.Fatalf("expected overrides, got port=%s env=%s", cfg.Port, cfg.Env)
	}
	if cfg.WhatsAppProvider != "twilio" {
		t.Fatalf("expected normalized provider, got %q", cfg.WhatsAppProvider)
	}
	if cfg.WebhookVerifyToken != "shared" {
		t.Fatalf("expected verify token to fall back to auth token, got %q", cfg.WebhookVerifyToken)
	}
	if !reflect.DeepEqual(cfg.LLMProviderOrder, []string{"groq", "bedrock"}) {
		t.Fatalf("unexpected provider order %v", cfg.LLMProviderOrder)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Fatalf("expected llm timeout override, got %s", cfg.LLMTimeout)
	}
	if cfg.BackendDaywiseEmail {
		t.Fatalf("expected day-wise emails disabled")
	}
	if cfg.WhatsAppSendRPS != 2.5 {
		t.Fatalf("expected send rate override, got %v", cfg.WhatsAppSendRPS)
	}
	if cfg.FailureNoticeTTL != 5*time.Minute {
		t.Fatalf("expected invalid duration to keep default, got %s", cfg.FailureNoticeTTL)
	}
}

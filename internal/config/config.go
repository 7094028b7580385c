package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// WhatsApp transport
	WhatsAppProvider      string
	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	WhatsAppAPIBaseURL    string
	WhatsAppAppSecret     string
	WhatsAppSendRPS       float64
	WebhookVerifyToken    string
	WebhookAuthToken      string
	WebhookRPS            float64
	WebhookBurst          int
	WebhookDedupeTTL      time.Duration
	BackendJWTSecret      string
	TwilioAccountSID      string
	TwilioAuthToken       string
	TwilioWhatsAppFrom    string

	// Backend and business settings
	BackendURL          string
	BackendDaywiseEmail bool
	GreetingMessage     string
	BrandName           string
	ExecutivePhone      string
	ExecutiveEmail      string
	TravelPackagesFile  string

	// Text generation
	LLMProviderOrder   []string
	LLMTimeout         time.Duration
	GeminiAPIKey       string
	GeminiModel        string
	GroqAPIKey         string
	GroqModel          string
	GroqBaseURL        string
	OllamaHost         string
	OllamaModel        string
	BedrockModelID     string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// State
	RedisAddr            string
	RedisPassword        string
	RedisTLS             bool
	TranscriptMaxEntries int
	TranscriptTTL        time.Duration
	FlowStateTTL         time.Duration
	FailureNoticeTTL     time.Duration
	DatabaseURL          string

	// Spreadsheet logging
	GoogleSheetsID        string
	GoogleSheetsRange     string
	GoogleCredentialsFile string

	// Email copy of executive handoffs
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
}

// Load reads configuration from environment variables
func Load() *Config {
	authToken := getEnv("WEBHOOK_AUTH_TOKEN", "")
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		WhatsAppProvider:      strings.ToLower(strings.TrimSpace(getEnv("WHATSAPP_PROVIDER", "auto"))),
		WhatsAppToken:         getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppAPIBaseURL:    getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v22.0"),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppSendRPS:       getEnvAsFloat("WHATSAPP_SEND_RPS", 20),
		WebhookVerifyToken:    getEnv("WEBHOOK_VERIFY_TOKEN", authToken),
		WebhookAuthToken:      authToken,
		WebhookRPS:            getEnvAsFloat("WEBHOOK_RPS", 0),
		WebhookBurst:          getEnvAsInt("WEBHOOK_BURST", 20),
		WebhookDedupeTTL:      getEnvAsDuration("WEBHOOK_DEDUPE_TTL", 24*time.Hour),
		BackendJWTSecret:      getEnv("BACKEND_JWT_SECRET", ""),
		TwilioAccountSID:      getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:       getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom:    getEnv("TWILIO_WHATSAPP_FROM", ""),

		BackendURL:          getEnv("BACKEND_URL", "http://localhost:8000"),
		BackendDaywiseEmail: getEnvAsBool("BACKEND_DAYWISE_EMAILS", true),
		GreetingMessage:     getEnv("GREETING_MESSAGE", "Welcome to Unravel Experience!"),
		BrandName:           getEnv("BRAND_NAME", "Unravel Experience"),
		ExecutivePhone:      getEnv("EXECUTIVE_PHONE_NUMBER", ""),
		ExecutiveEmail:      getEnv("EXECUTIVE_EMAIL", ""),
		TravelPackagesFile:  getEnv("TRAVEL_PACKAGES_FILE", ""),

		LLMProviderOrder:   getEnvAsList("LLM_PROVIDER_ORDER", []string{"gemini", "groq", "ollama"}),
		LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 20*time.Second),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		GroqModel:          getEnv("GROQ_MODEL", "gemma2-9b-it"),
		GroqBaseURL:        getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1/"),
		OllamaHost:         getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:        getEnv("OLLAMA_MODEL", "llama3"),
		BedrockModelID:     getEnv("BEDROCK_MODEL_ID", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),
		TranscriptMaxEntries: getEnvAsInt("TRANSCRIPT_MAX_ENTRIES", 50),
		TranscriptTTL:        getEnvAsDuration("TRANSCRIPT_TTL", 720*time.Hour),
		FlowStateTTL:         getEnvAsDuration("FLOW_STATE_TTL", 30*time.Minute),
		FailureNoticeTTL:     getEnvAsDuration("FAILURE_NOTICE_TTL", 5*time.Minute),
		DatabaseURL:          getEnv("DATABASE_URL", ""),

		GoogleSheetsID:        getEnv("GOOGLE_SHEETS_ID", ""),
		GoogleSheetsRange:     getEnv("GOOGLE_SHEETS_RANGE", "Sheet1!A1"),
		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Unravel Experience"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Unravel Experience"),
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, lowercasing each item.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

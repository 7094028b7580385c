// Package whatsapp sends and receives WhatsApp messages through the Meta
// Cloud API, with Twilio as an alternate transport.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

const (
	defaultBaseURL = "https://graph.facebook.com/v22.0"
	defaultSendRPS = 20
)

var metaTracer = otel.Tracer("whatsapp-bot.internal.whatsapp.meta")

// Config controls the Meta Cloud API client.
type Config struct {
	BaseURL       string
	Token         string
	PhoneNumberID string
	Timeout       time.Duration
	MaxRetries    int
	Backoff       time.Duration
	// SendRPS caps outbound requests per second; burst equals the rate.
	SendRPS    float64
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client is a Meta WhatsApp Cloud API client.
type Client struct {
	baseURL       string
	token         string
	phoneNumberID string
	httpClient    *http.Client
	maxRetries    int
	backoff       time.Duration
	limiter       *rate.Limiter
	logger        *logging.Logger
}

// New validates cfg and returns a client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("whatsapp: access token is required")
	}
	if strings.TrimSpace(cfg.PhoneNumberID) == "" {
		return nil, errors.New("whatsapp: phone number id is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	rps := cfg.SendRPS
	if rps <= 0 {
		rps = defaultSendRPS
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:       baseURL,
		token:         cfg.Token,
		phoneNumberID: cfg.PhoneNumberID,
		httpClient:    httpClient,
		maxRetries:    maxRetries,
		backoff:       backoff,
		limiter:       rate.NewLimiter(rate.Limit(rps), burst),
		logger:        logger,
	}, nil
}

var _ conversation.Messenger = (*Client)(nil)

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID            string `json:"id"`
		MessageStatus string `json:"message_status,omitempty"`
	} `json:"messages"`
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) (conversation.Receipt, error) {
	to = NormalizePhone(to)
	if to == "" {
		return conversation.Receipt{}, errors.New("whatsapp: recipient required")
	}
	if strings.TrimSpace(body) == "" {
		return conversation.Receipt{}, errors.New("whatsapp: body required")
	}

	ctx, span := metaTracer.Start(ctx, "whatsapp.meta.send_text")
	defer span.End()
	span.SetAttributes(attribute.Int("whatsapp.body_length", len(body)))

	msg := textMessage{MessagingProduct: "whatsapp", RecipientType: "individual", To: to, Type: "text"}
	msg.Text.Body = body
	payload, err := json.Marshal(msg)
	if err != nil {
		return conversation.Receipt{}, fmt.Errorf("whatsapp: marshal message: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/"+c.phoneNumberID+"/messages", payload)
	if err != nil {
		span.RecordError(err)
		return conversation.Receipt{}, err
	}
	var resp sendResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return conversation.Receipt{}, fmt.Errorf("whatsapp: decode send response: %w", err)
	}
	if len(resp.Messages) == 0 || resp.Messages[0].ID == "" {
		return conversation.Receipt{}, errors.New("whatsapp: send response missing message id")
	}
	status := resp.Messages[0].MessageStatus
	if status == "" {
		status = "accepted"
	}
	c.logger.Debug("whatsapp message sent", "to", logging.RedactPhone(to), "message_id", resp.Messages[0].ID)
	return conversation.Receipt{MessageID: resp.Messages[0].ID, Status: status}, nil
}

// MessageStatus is the Graph API view of a sent message.
type MessageStatus struct {
	ID     string          `json:"id"`
	Status string          `json:"status,omitempty"`
	Raw    json.RawMessage `json:"raw"`
}

// MessageStatus looks a sent message up by id.
func (c *Client) MessageStatus(ctx context.Context, messageID string) (*MessageStatus, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return nil, errors.New("whatsapp: message id required")
	}
	data, err := c.invoke(ctx, http.MethodGet, "/"+url.PathEscape(messageID), nil)
	if err != nil {
		return nil, err
	}
	status := &MessageStatus{ID: messageID, Raw: json.RawMessage(data)}
	var parsed struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil {
		if parsed.ID != "" {
			status.ID = parsed.ID
		}
		status.Status = parsed.Status
	}
	return status, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	fullURL := c.baseURL + path
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("whatsapp: rate limit wait: %w", err)
		}
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("whatsapp: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !shouldRetry(0, err) || attempt == c.maxRetries {
				return nil, fmt.Errorf("whatsapp: http error: %w", err)
			}
			lastErr = err
			c.logRetry(path, attempt, 0, err)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("whatsapp: read response: %w", readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		apiErr := decodeAPIError(resp.StatusCode, data)
		if attempt < c.maxRetries && shouldRetry(resp.StatusCode, nil) {
			lastErr = apiErr
			c.logRetry(path, attempt, resp.StatusCode, apiErr)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		return nil, apiErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("whatsapp: request failed without response")
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoff * time.Duration(1<<attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(path string, attempt int, status int, err error) {
	c.logger.Warn("whatsapp retry",
		"path", path,
		"attempt", attempt+1,
		"status", status,
		"error", err,
	)
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		return !errors.Is(err, context.Canceled)
	}
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

// APIError is a Graph API error response.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message,omitempty"`
	Type       string `json:"type,omitempty"`
	Code       int    `json:"code,omitempty"`
	TraceID    string `json:"fbtrace_id,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("whatsapp: %s (status=%d code=%d)", e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("whatsapp: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) error {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	}
	envelope.Error.StatusCode = status
	return envelope.Error
}

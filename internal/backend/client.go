// Package backend talks to the travel agency's REST backend.
package backend

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

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/retry"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

const (
	lookupTimeout  = 5 * time.Second
	bookingTimeout = 15 * time.Second
	daywiseTimeout = 30 * time.Second
)

var (
	// BookingEmailPolicy retries the single booking email.
	BookingEmailPolicy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	// DaywiseEmailPolicy retries the day-wise vendor emails, which fan out to many vendors.
	DaywiseEmailPolicy = retry.Policy{MaxAttempts: 5, BaseDelay: 2 * time.Second, MaxDelay: 15 * time.Second}
)

// Config configures Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *logging.Logger
	// Policies override the default retry policies; zero values keep the defaults.
	BookingPolicy retry.Policy
	DaywisePolicy retry.Policy
}

// Client is a thin JSON client for the backend.
type Client struct {
	baseURL       string
	http          *http.Client
	logger        *logging.Logger
	bookingPolicy retry.Policy
	daywisePolicy retry.Policy
}

// New validates cfg and returns a client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("backend: invalid base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL:       base,
		http:          httpClient,
		logger:        logger,
		bookingPolicy: BookingEmailPolicy,
		daywisePolicy: DaywiseEmailPolicy,
	}
	if cfg.BookingPolicy.MaxAttempts > 0 {
		c.bookingPolicy = cfg.BookingPolicy
	}
	if cfg.DaywisePolicy.MaxAttempts > 0 {
		c.daywisePolicy = cfg.DaywisePolicy
	}
	return c, nil
}

// Customer is a backend customer profile.
type Customer struct {
	ID    json.Number `json:"id,omitempty"`
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
	Email string      `json:"email,omitempty"`
}

// VendorInquiry asks vendors for pricing.
type VendorInquiry struct {
	CustomerPhone string `json:"customerPhone"`
	CustomerName  string `json:"customerName,omitempty"`
	Message       string `json:"message"`
	Destination   string `json:"destination,omitempty"`
	ServiceType   string `json:"serviceType"`
	RequestID     string `json:"requestId"`
}

// BookingRecord is the booking payload sent for vendor emails.
type BookingRecord struct {
	CustomerPhone  string `json:"customerPhone"`
	CustomerName   string `json:"customerName"`
	Package        string `json:"package"`
	Destination    string `json:"destination"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	NumberOfPeople string `json:"numberOfPeople"`
	TotalPrice     string `json:"totalPrice,omitempty"`
	Status         string `json:"status"`
	Notes          string `json:"notes,omitempty"`
}

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend: http status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("backend: http status %d", e.StatusCode)
}

// GetCustomerData looks a customer up by phone. An empty slice means unknown.
func (c *Client) GetCustomerData(ctx context.Context, phone string) ([]Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("phone", phone)
	body, err := c.do(ctx, http.MethodGet, "/api/customers/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var customers []Customer
	if err := json.Unmarshal(body, &customers); err != nil {
		return nil, fmt.Errorf("backend: decode customers: %w", err)
	}
	return customers, nil
}

// SendVendorEmail forwards a price inquiry. It is not retried.
func (c *Client) SendVendorEmail(ctx context.Context, inquiry VendorInquiry) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	return c.postJSON(ctx, "/api/send-vendor-email/", inquiry)
}

// SendBookingEmail sends one booking email, retrying transient failures.
func (c *Client) SendBookingEmail(ctx context.Context, record BookingRecord) (json.RawMessage, error) {
	return c.postWithRetry(ctx, "/api/send-booking-email/", record, c.bookingPolicy, bookingTimeout)
}

// SendDaywiseBookingEmail asks the backend to email vendors one itinerary day at a time.
func (c *Client) SendDaywiseBookingEmail(ctx context.Context, record BookingRecord) (json.RawMessage, error) {
	return c.postWithRetry(ctx, "/api/send-daywise-booking-emails/", record, c.daywisePolicy, daywiseTimeout)
}

func (c *Client) postWithRetry(ctx context.Context, path string, payload any, policy retry.Policy, perAttempt time.Duration) (json.RawMessage, error) {
	var out json.RawMessage
	err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, perAttempt)
		defer cancel()
		body, err := c.postJSON(attemptCtx, path, payload)
		if err != nil {
			if !shouldRetry(err) {
				return retry.Permanent(err)
			}
			return err
		}
		out = body
		return nil
	}, retry.OnRetry(func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("backend call failed, retrying", "path", path, "attempt", attempt, "delay", delay, "error", err)
	}))
	if err != nil {
		c.logger.Error("backend call failed", "path", path, "error", err)
		return nil, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("backend: marshal payload: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, data)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("backend: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return raw, nil
}

// shouldRetry treats timeouts, transport failures, 429 and 5xx as transient.
func shouldRetry(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return !errors.Is(err, context.Canceled)
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/whatsapp"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

type notifier interface {
	IngestQuotes(ctx context.Context, userID string, record transcript.QuoteRecord) (conversation.Receipt, error)
	Notify(ctx context.Context, userID, text string) (conversation.Receipt, error)
}

// StatusLookup resolves outbound delivery status; optional.
type StatusLookup interface {
	MessageStatus(ctx context.Context, messageID string) (*whatsapp.MessageStatus, error)
}

// BackendWebhookHandler serves the endpoints the travel backend calls.
type BackendWebhookHandler struct {
	service notifier
	status  StatusLookup
	brand   string
	logger  *logging.Logger
	now     func() time.Time
}

// NewBackendWebhookHandler builds the handler; status may be nil when the
// Cloud API client is not configured.
func NewBackendWebhookHandler(service notifier, status StatusLookup, brand string, logger *logging.Logger) *BackendWebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if brand == "" {
		brand = "Unravel Experience"
	}
	return &BackendWebhookHandler{
		service: service,
		status:  status,
		brand:   brand,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type vendorQuoteItem struct {
	VendorName   string     `json:"vendor_name"`
	FinalPrice   flexString `json:"final_price"`
	Details      string     `json:"details"`
	QuoteDetails string     `json:"quote_details"`
	ValidUntil   string     `json:"valid_until"`
	ValidityDate string     `json:"validity_date"`
}

type vendorQuoteRequest struct {
	CustomerPhone string            `json:"customer_phone"`
	Destination   string            `json:"destination"`
	ServiceType   string            `json:"service_type"`
	RequestID     string            `json:"request_id"`
	Quotes        []vendorQuoteItem `json:"quotes"`
}

func (req vendorQuoteRequest) record(at time.Time) transcript.QuoteRecord {
	rec := transcript.QuoteRecord{
		Destination: strings.TrimSpace(req.Destination),
		ServiceType: strings.TrimSpace(req.ServiceType),
		RequestID:   strings.TrimSpace(req.RequestID),
		ReceivedAt:  at,
	}
	for _, q := range req.Quotes {
		details := q.Details
		if details == "" {
			details = q.QuoteDetails
		}
		valid := q.ValidUntil
		if valid == "" {
			valid = q.ValidityDate
		}
		rec.Quotes = append(rec.Quotes, transcript.Quote{
			VendorName: strings.TrimSpace(q.VendorName),
			FinalPrice: q.FinalPrice.String(),
			Details:    strings.TrimSpace(details),
			ValidUntil: strings.TrimSpace(valid),
		})
	}
	return rec
}

// VendorQuote stores vendor quotes and forwards them to the customer.
// POST /api/webhook/vendor-quote
func (h *BackendWebhookHandler) VendorQuote(w http.ResponseWriter, r *http.Request) {
	var req vendorQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	phone := whatsapp.NormalizePhone(req.CustomerPhone)
	if phone == "" {
		writeError(w, http.StatusBadRequest, "customer_phone is required")
		return
	}
	receipt, err := h.service.IngestQuotes(r.Context(), phone, req.record(h.now()))
	if err != nil {
		if errors.Is(err, conversation.ErrNoQuotes) {
			writeError(w, http.StatusBadRequest, "at least one quote is required")
			return
		}
		h.logger.Error("vendor quote delivery failed", "user_id", logging.RedactPhone(phone), "error", err)
		writeError(w, http.StatusBadGateway, "failed to deliver quotes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"message":    "Quotes sent to customer",
		"message_id": receipt.MessageID,
	})
}

type bookingConfirmationRequest struct {
	CustomerPhone string     `json:"customer_phone"`
	CustomerName  string     `json:"customer_name"`
	BookingID     flexString `json:"booking_id"`
	TravelDate    string     `json:"travel_date"`
	Destination   string     `json:"destination"`
	Guests        flexString `json:"guests"`
	Status        string     `json:"status"`
}

// BookingConfirmation tells the customer an agent confirmed their booking.
// POST /webhook/booking-confirmation
func (h *BackendWebhookHandler) BookingConfirmation(w http.ResponseWriter, r *http.Request) {
	var req bookingConfirmationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	text := conversation.BookingConfirmation{
		CustomerName: req.CustomerName,
		BookingID:    req.BookingID.String(),
		Destination:  req.Destination,
		TravelDate:   req.TravelDate,
		Guests:       req.Guests.String(),
		Status:       req.Status,
	}.Text(h.brand)
	h.deliver(w, r, req.CustomerPhone, text, "booking confirmation")
}

type customerUpdateRequest struct {
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`
	UpdateType    string `json:"update_type"`
	Details       string `json:"details"`
	Message       string `json:"message"`
}

// CustomerUpdate relays a profile, payment or booking update.
// POST /webhook/customer-update
func (h *BackendWebhookHandler) CustomerUpdate(w http.ResponseWriter, r *http.Request) {
	var req customerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	text := conversation.CustomerUpdate{
		CustomerName: req.CustomerName,
		UpdateType:   strings.ToLower(strings.TrimSpace(req.UpdateType)),
		Details:      req.Details,
		Message:      req.Message,
	}.Text()
	h.deliver(w, r, req.CustomerPhone, text, "customer update")
}

type inquiryResponseRequest struct {
	CustomerPhone   string     `json:"customer_phone"`
	CustomerName    string     `json:"customer_name"`
	VendorName      string     `json:"vendor_name"`
	InquiryID       flexString `json:"inquiry_id"`
	ResponseMessage string     `json:"response_message"`
}

// InquiryResponse forwards a vendor's answer to a price inquiry.
// POST /webhook/inquiry-response
func (h *BackendWebhookHandler) InquiryResponse(w http.ResponseWriter, r *http.Request) {
	var req inquiryResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.ResponseMessage) == "" {
		writeError(w, http.StatusBadRequest, "response_message is required")
		return
	}
	text := conversation.InquiryResponse{
		CustomerName: req.CustomerName,
		VendorName:   req.VendorName,
		InquiryID:    req.InquiryID.String(),
		Response:     strings.TrimSpace(req.ResponseMessage),
	}.Text()
	h.deliver(w, r, req.CustomerPhone, text, "inquiry response")
}

func (h *BackendWebhookHandler) deliver(w http.ResponseWriter, r *http.Request, rawPhone, text, kind string) {
	phone := whatsapp.NormalizePhone(rawPhone)
	if phone == "" {
		writeError(w, http.StatusBadRequest, "customer_phone is required")
		return
	}
	receipt, err := h.service.Notify(r.Context(), phone, text)
	if err != nil {
		h.logger.Error("backend notification failed", "kind", kind, "user_id", logging.RedactPhone(phone), "error", err)
		writeError(w, http.StatusBadGateway, "failed to send "+kind)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"message_id": receipt.MessageID,
	})
}

// MessageStatus proxies a Cloud API message lookup.
// GET /api/message-status/{messageID}
func (h *BackendWebhookHandler) MessageStatus(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		writeError(w, http.StatusServiceUnavailable, "message status lookup not configured")
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "messageID"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing messageID")
		return
	}
	status, err := h.status.MessageStatus(r.Context(), id)
	if err != nil {
		var apiErr *whatsapp.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "message not found")
			return
		}
		h.logger.Error("message status lookup failed", "message_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "message status lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

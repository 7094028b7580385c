package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/bookings"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/whatsapp"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

type conversationAdmin interface {
	Snapshot(ctx context.Context, userID string) (conversation.Snapshot, error)
	Forget(ctx context.Context, userID string) error
}

// BookingLister reads stored bookings; optional.
type BookingLister interface {
	ListByPhone(ctx context.Context, phone string, limit int) ([]bookings.Booking, error)
}

// AdminHandler exposes conversation and booking lookups.
type AdminHandler struct {
	conversations conversationAdmin
	bookings      BookingLister
	logger        *logging.Logger
}

// NewAdminHandler builds the handler; bookings may be nil without a database.
func NewAdminHandler(conversations conversationAdmin, bookings BookingLister, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{conversations: conversations, bookings: bookings, logger: logger}
}

// GetConversation returns the transcript, booking state and flow for a user.
// GET /api/conversations/{userID}
func (h *AdminHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := whatsapp.NormalizePhone(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userID")
		return
	}
	snap, err := h.conversations.Snapshot(r.Context(), userID)
	if err != nil {
		h.logger.Error("conversation snapshot failed", "user_id", logging.RedactPhone(userID), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// DeleteConversation removes everything stored for a user.
// DELETE /api/conversations/{userID}
func (h *AdminHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID := whatsapp.NormalizePhone(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing userID")
		return
	}
	if err := h.conversations.Forget(r.Context(), userID); err != nil {
		h.logger.Error("conversation delete failed", "user_id", logging.RedactPhone(userID), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBookings returns recorded bookings for a phone number.
// GET /api/bookings?phone=&limit=
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if h.bookings == nil {
		writeError(w, http.StatusServiceUnavailable, "booking records not configured")
		return
	}
	phone := whatsapp.NormalizePhone(r.URL.Query().Get("phone"))
	if phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}
	limit, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))
	rows, err := h.bookings.ListByPhone(r.Context(), phone, limit)
	if err != nil {
		h.logger.Error("booking lookup failed", "user_id", logging.RedactPhone(phone), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": rows, "count": len(rows)})
}

// Health reports liveness.
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "whatsapp-bot"})
}

package conversation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/booking"
)

const bookingStatusPending = "pending"

func (e *Engine) priceInquiry(ctx context.Context, t *turn) string {
	if e.backend == nil {
		return MsgPriceInquiryFailed
	}
	name := t.state.CustomerName
	if c := e.lookupCustomer(ctx, t); c != nil && c.Name != "" {
		name = c.Name
	}
	inquiry := backend.VendorInquiry{
		CustomerPhone: t.userID,
		CustomerName:  name,
		Message:       t.body,
		Destination:   t.state.Destination,
		ServiceType:   "travel",
		RequestID:     uuid.NewString(),
	}
	if _, err := e.backend.SendVendorEmail(ctx, inquiry); err != nil {
		t.log.Error("vendor inquiry failed", "request_id", inquiry.RequestID, "error", err)
		return MsgPriceInquiryFailed
	}
	t.log.Info("vendor inquiry sent", "request_id", inquiry.RequestID)
	return MsgPriceInquiryAck
}

// finalize dispatches the booking to vendors once the chat fields are complete.
func (e *Engine) finalize(ctx context.Context, t *turn) string {
	state := t.state
	if state.CustomerName == "" {
		if c := e.lookupCustomer(ctx, t); c != nil {
			state.CustomerName = c.Name
		}
	}
	if missing := state.Missing(booking.ChatRequired...); len(missing) > 0 {
		t.log.Info("finalize rejected", "missing", fmt.Sprint(missing))
		if t.flow.InBookingProcess {
			t.flow.Stage = StageCollecting
		}
		return FinalizeRejected(missing)
	}
	if state.EndDate == "" {
		state.EndDate = booking.DeriveEndDate(state.StartDate)
	}
	if e.backend == nil {
		t.log.Error("finalize without a configured backend")
		return MsgFinalizeFailed
	}

	record := e.bookingRecord(t.userID, state)
	dispatch := e.backend.SendDaywiseBookingEmail
	if !e.cfg.DaywiseEmails {
		dispatch = e.backend.SendBookingEmail
	}
	previous := t.flow.Stage
	t.flow.Stage = StageFinalized
	if _, err := dispatch(ctx, record); err != nil {
		t.log.Error("booking dispatch failed", "error", err)
		t.flow.Stage = previous
		return MsgFinalizeFailed
	}
	t.flow.InBookingProcess = false
	t.log.Info("booking finalized", "package", record.Package, "start_date", record.StartDate)

	if e.bookings != nil {
		if err := e.bookings.RecordFinalized(ctx, record); err != nil {
			t.log.Error("failed to persist finalized booking", "error", err)
		}
	}
	return FinalizeConfirmed(e.cfg.BrandName)
}

// bookingRecord maps state onto the backend payload. The package is sent as
// its catalog id and the notes always name the destination.
func (e *Engine) bookingRecord(userID string, state booking.State) backend.BookingRecord {
	pkg := e.selectedPackage(state)
	destination := state.Destination
	if destination == "" {
		destination = pkg.Destination
	}
	notes := "Booked via WhatsApp. Destination: " + destination + "."
	if state.Preferences != "" {
		notes += " Preferences: " + state.Preferences + "."
	}
	if state.Email != "" {
		notes += " Email: " + state.Email + "."
	}
	return backend.BookingRecord{
		CustomerPhone:  userID,
		CustomerName:   state.CustomerName,
		Package:        pkg.ID,
		Destination:    destination,
		StartDate:      state.StartDate,
		EndDate:        state.EndDate,
		NumberOfPeople: state.NumberOfPeople,
		TotalPrice:     state.Budget,
		Status:         bookingStatusPending,
		Notes:          notes,
	}
}

// logToSheet appends the booking once the spreadsheet fields are complete and
// the record differs from the last one appended for the user.
func (e *Engine) logToSheet(ctx context.Context, t *turn) {
	if e.sheets == nil || !t.state.Has(booking.SheetRequired...) {
		return
	}
	record := e.bookingRecord(t.userID, t.state)
	fingerprint := recordFingerprint(record)
	if fingerprint == t.flow.LastSheetRecord {
		return
	}
	if err := e.sheets.AppendBooking(ctx, record); err != nil {
		t.log.Error("spreadsheet append failed", "error", err)
		return
	}
	t.flow.LastSheetRecord = fingerprint
}

func recordFingerprint(r backend.BookingRecord) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		r.CustomerName, r.Package, r.Destination, r.StartDate, r.EndDate, r.NumberOfPeople, r.TotalPrice,
	}, "\x1f")))
	return hex.EncodeToString(sum[:8])
}

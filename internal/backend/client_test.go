package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/retry"
)

var fastPolicy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/", BookingPolicy: fastPolicy, DaywisePolicy: fastPolicy})
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestGetCustomerData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customers/", r.URL.Path)
		assert.Equal(t, "919876543210", r.URL.Query().Get("phone"))
		_, _ = w.Write([]byte(`[{"id": 7, "name": "Pratham Rathore", "phone": "919876543210"}]`))
	})
	customers, err := c.GetCustomerData(context.Background(), "919876543210")
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Pratham Rathore", customers[0].Name)
	assert.Equal(t, json.Number("7"), customers[0].ID)
}

func TestGetCustomerDataError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	_, err := c.GetCustomerData(context.Background(), "1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestSendVendorEmailIsNotRetried(t *testing.T) {
	var calls int32
	var got VendorInquiry
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.SendVendorEmail(context.Background(), VendorInquiry{CustomerPhone: "91", Message: "price?", ServiceType: "travel"})
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, "price?", got.Message)
}

func TestSendDaywiseBookingEmailRetriesTransientFailures(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/send-daywise-booking-emails/", r.URL.Path)
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var rec BookingRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "2026-06-23", rec.StartDate)
		_, _ = w.Write([]byte(`{"status":"sent"}`))
	})
	resp, err := c.SendDaywiseBookingEmail(context.Background(), BookingRecord{StartDate: "2026-06-23", Status: "Pending"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"sent"}`, string(resp))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSendBookingEmailExhaustsAttempts(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.SendBookingEmail(context.Background(), BookingRecord{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, retry.ErrExhausted))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSendBookingEmailStopsOnClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":"missing startDate"}`, http.StatusBadRequest)
	})
	_, err := c.SendBookingEmail(context.Background(), BookingRecord{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, retry.ErrExhausted))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestEmptyBodyIsNullJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	resp, err := c.SendBookingEmail(context.Background(), BookingRecord{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(resp))
}

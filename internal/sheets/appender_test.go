package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
)

func newTestAppender(t *testing.T, handler http.HandlerFunc) *Appender {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	a, err := NewAppender(context.Background(), Config{
		SpreadsheetID: "sheet-123",
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(server.URL + "/"),
			option.WithoutAuthentication(),
			option.WithHTTPClient(server.Client()),
		},
		Now: func() time.Time { return time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return a
}

func TestAppendBooking(t *testing.T) {
	var gotPath, gotQuery string
	var body struct {
		Values [][]any `json:"values"`
	}
	a := newTestAppender(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"spreadsheetId":"sheet-123"}`))
	})

	err := a.AppendBooking(context.Background(), backend.BookingRecord{
		CustomerPhone:  "919876543210",
		CustomerName:   "Asha Verma",
		Package:        "P001",
		Destination:    "Bali, Indonesia",
		StartDate:      "23/06/2026",
		EndDate:        "30/06/2026",
		NumberOfPeople: "2",
		Status:         "pending",
	})
	require.NoError(t, err)

	assert.Contains(t, gotPath, "/spreadsheets/sheet-123/values/")
	assert.True(t, strings.HasSuffix(gotPath, ":append"), gotPath)
	assert.Contains(t, gotQuery, "valueInputOption=USER_ENTERED")
	require.Len(t, body.Values, 1)
	row := body.Values[0]
	require.Len(t, row, 11)
	assert.Equal(t, "2026-05-01 09:30:00", row[0])
	assert.Equal(t, "919876543210", row[1])
	assert.Equal(t, "Asha Verma", row[2])
	assert.Equal(t, "23/06/2026", row[5])
	assert.Equal(t, "2", row[7])
}

func TestAppendBookingError(t *testing.T) {
	a := newTestAppender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})
	err := a.AppendBooking(context.Background(), backend.BookingRecord{CustomerPhone: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets: append row")
}

func TestNewAppenderRequiresSpreadsheet(t *testing.T) {
	_, err := NewAppender(context.Background(), Config{})
	require.Error(t, err)
}

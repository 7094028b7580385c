// Package sheets appends booking rows to a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

const defaultRange = "Sheet1!A1"

// Config selects the target spreadsheet.
type Config struct {
	SpreadsheetID string
	// Range is the A1 anchor rows are appended after.
	Range string
	// ClientOptions are passed to the Sheets service; credentials default
	// to Application Default Credentials.
	ClientOptions []option.ClientOption
	Logger        *logging.Logger
	Now           func() time.Time
}

// Appender writes one row per booking.
type Appender struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	rangeA1       string
	logger        *logging.Logger
	now           func() time.Time
}

// NewAppender builds the Sheets client.
func NewAppender(ctx context.Context, cfg Config) (*Appender, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}
	opts := append([]option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}, cfg.ClientOptions...)
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	rangeA1 := strings.TrimSpace(cfg.Range)
	if rangeA1 == "" {
		rangeA1 = defaultRange
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Appender{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		rangeA1:       rangeA1,
		logger:        logger,
		now:           now,
	}, nil
}

var _ conversation.SheetAppender = (*Appender)(nil)

// AppendBooking appends rec as a single row.
func (a *Appender) AppendBooking(ctx context.Context, rec backend.BookingRecord) error {
	row := []interface{}{
		a.now().Format("2006-01-02 15:04:05"),
		rec.CustomerPhone,
		rec.CustomerName,
		rec.Package,
		rec.Destination,
		rec.StartDate,
		rec.EndDate,
		rec.NumberOfPeople,
		rec.TotalPrice,
		rec.Status,
		rec.Notes,
	}
	values := &sheetsapi.ValueRange{Values: [][]interface{}{row}}
	_, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, a.rangeA1, values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	a.logger.Info("booking row appended", "user_id", logging.RedactPhone(rec.CustomerPhone))
	return nil
}

// Package booking derives structured booking fields from a free-text WhatsApp conversation.
package booking

import "strings"

// Field names one booking attribute.
type Field string

const (
	FieldName      Field = "name"
	FieldPackage   Field = "package"
	FieldStartDate Field = "start_date"
	FieldEndDate   Field = "end_date"
	FieldPartySize Field = "number_of_people"
	FieldEmail     Field = "email"
)

var (
	// ChatRequired is collected in order during the in-chat booking flow.
	ChatRequired = []Field{FieldName, FieldStartDate, FieldPartySize}
	// SheetRequired must be complete before a row is appended to the spreadsheet.
	SheetRequired = []Field{FieldName, FieldPackage, FieldStartDate, FieldEndDate, FieldPartySize}
)

// State is the merged booking record recomputed from the transcript every turn.
type State struct {
	CustomerName   string `json:"customerName"`
	Package        string `json:"package"`
	Destination    string `json:"destination"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	NumberOfPeople string `json:"numberOfPeople"`
	Email          string `json:"email"`
	Preferences    string `json:"preferences"`
	Budget         string `json:"budget"`
}

// Value returns the field's current value.
func (s State) Value(f Field) string {
	switch f {
	case FieldName:
		return s.CustomerName
	case FieldPackage:
		return s.Package
	case FieldStartDate:
		return s.StartDate
	case FieldEndDate:
		return s.EndDate
	case FieldPartySize:
		return s.NumberOfPeople
	case FieldEmail:
		return s.Email
	default:
		return ""
	}
}

// Missing lists the fields that are empty, preserving the given order.
// Whitespace-only values count as missing.
func (s State) Missing(fields ...Field) []Field {
	var out []Field
	for _, f := range fields {
		if strings.TrimSpace(s.Value(f)) == "" {
			out = append(out, f)
		}
	}
	return out
}

// Has reports whether every field is populated.
func (s State) Has(fields ...Field) bool {
	return len(s.Missing(fields...)) == 0
}

// coreFields gate the "no ..." correction path.
var coreFields = []Field{FieldName, FieldPackage, FieldStartDate, FieldEndDate, FieldPartySize}

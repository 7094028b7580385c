package booking

import (
	"testing"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

func user(text string) transcript.Entry { return transcript.UserEntry(text, time.Time{}) }
func bot(text string) transcript.Entry  { return transcript.BotEntry(text, time.Time{}) }

func TestExtractName(t *testing.T) {
	tests := []struct {
		name    string
		entries []transcript.Entry
		current string
		want    string
	}{
		{
			name:    "reply to full name prompt",
			entries: []transcript.Entry{bot("Can I have your full name for the booking?")},
			current: "Pratham Rathore",
			want:    "Pratham Rathore",
		},
		{
			name:    "lowercase reply is title cased",
			entries: []transcript.Entry{bot("What's your name?")},
			current: "  pratham   rathore. ",
			want:    "Pratham Rathore",
		},
		{
			name:    "reply with digits is not a name",
			entries: []transcript.Entry{bot("Can I have your full name for the booking?")},
			current: "23/06/2026",
			want:    "",
		},
		{
			name:    "my name is phrase",
			current: "Hello, my name is john smith",
			want:    "John Smith",
		},
		{
			name:    "capitalised run after greeting",
			current: "Hello Pratham Rathore here",
			want:    "Pratham Rathore",
		},
		{
			name:    "package name rejected",
			current: "I want Bali Explorer",
			want:    "",
		},
		{
			name:    "single word is not enough",
			current: "I am Pratham",
			want:    "",
		},
		{
			name:    "filler after i am",
			current: "I am traveling with family",
			want:    "",
		},
		{
			name: "earlier reply to name prompt",
			entries: []transcript.Entry{
				bot("Can I have your full name for the booking?"),
				user("asha verma"),
				bot("Hi Asha Verma! When would you like your trip to start?"),
			},
			current: "23/06/2026",
			want:    "Asha Verma",
		},
		{
			name: "first match wins",
			entries: []transcript.Entry{
				user("Ravi Kumar booking for my friend"),
			},
			current: "also my name is neha singh",
			want:    "Ravi Kumar",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractName(tt.entries, tt.current); got != tt.want {
				t.Fatalf("ExtractName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractDates(t *testing.T) {
	tests := []struct {
		name      string
		entries   []transcript.Entry
		current   string
		wantStart string
		wantEnd   string
	}{
		{"day above twelve swaps", nil, "23/06/2026", "2026-06-23", "2026-06-28"},
		{"first token twelve or less is the month", nil, "05/08/2026", "2026-05-08", "2026-05-13"},
		{"iso literal", nil, "starting 2026-07-01 please", "2026-07-01", "2026-07-06"},
		{"iso literal with slashes", nil, "2026/06/23", "2026-06-23", "2026-06-28"},
		{"day of month", nil, "the 3rd of March 2027", "2027-03-03", "2027-03-08"},
		{"day month year", nil, "15 Aug 2026", "2026-08-15", "2026-08-20"},
		{"month day year", nil, "August 15, 2026", "2026-08-15", "2026-08-20"},
		{"invalid date rejected", nil, "31/02/2026", "", ""},
		{
			name:      "earliest across transcript wins",
			entries:   []transcript.Entry{user("23/07/2026"), bot("Noted")},
			current:   "actually 23/06/2026",
			wantStart: "2026-06-23",
			wantEnd:   "2026-06-28",
		},
		{"single date with return cue becomes end", nil, "return on 2026-07-01", "2026-07-01", "2026-07-01"},
		{"two dates still derive end", []transcript.Entry{user("2026-07-01")}, "back to 2026-07-09", "2026-07-01", "2026-07-06"},
		{"no dates", nil, "hello", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ExtractDates(tt.entries, tt.current)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Fatalf("ExtractDates() = (%q, %q), want (%q, %q)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestNormalizeDatesAgreesAcrossLiterals(t *testing.T) {
	for _, pair := range [][2]string{
		{"15/08/2026", "August 15, 2026"},
		{"23/06/2026", "Jun 23, 2026"},
		{"31/12/2026", "December 31 2026"},
		{"2026/06/23", "23/06/2026"},
	} {
		a := NormalizeDates(pair[0])
		b := NormalizeDates(pair[1])
		if len(a) != 1 || len(b) != 1 || a[0] != b[0] {
			t.Fatalf("expected %q and %q to normalize equally, got %v and %v", pair[0], pair[1], a, b)
		}
		both := NormalizeDates(pair[0] + " or " + pair[1])
		if len(both) != 1 {
			t.Fatalf("expected one distinct date, got %v", both)
		}
	}
}

func TestExtractPartySize(t *testing.T) {
	tests := []struct {
		name    string
		entries []transcript.Entry
		current string
		want    string
	}{
		{
			name:    "reply to how many prompt",
			entries: []transcript.Entry{bot("Great! How many people will be traveling?")},
			current: "We are 4",
			want:    "4",
		},
		{
			name:    "date reply to how many prompt is not a party size",
			entries: []transcript.Entry{bot("Great! How many people will be traveling?")},
			current: "10/03/2026",
			want:    "",
		},
		{
			name:    "reply to how many prompt skips the date",
			entries: []transcript.Entry{bot("Great! How many people will be traveling?")},
			current: "from 10/03/2026, 4 of us",
			want:    "4",
		},
		{"explicit people", nil, "trip for 3 people", "3"},
		{"party of", nil, "a party of 6", "6"},
		{"last match wins", []transcript.Entry{user("2 adults")}, "sorry, make it 5 guests", "5"},
		{"out of range ignored", nil, "45 people", ""},
		{"date numerals never count", nil, "for 10/03/2026", ""},
		{"date numerals skipped by fallback", nil, "We are traveling on 10/03/2026", ""},
		{"spelled date skipped", nil, "on 15 August 2026", ""},
		{"time context rejected, fallback finds bare number", nil, "flight at 10:30 for 2 people", "2"},
		{
			name:    "standalone fallback uses current message",
			entries: []transcript.Entry{user("23/06/2026"), bot("Got it.")},
			current: "8",
			want:    "8",
		},
		{"nothing numeric", nil, "hello there", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPartySize(tt.entries, tt.current); got != tt.want {
				t.Fatalf("ExtractPartySize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractEmail(t *testing.T) {
	asked := []transcript.Entry{user("reach me at old@example.com"), bot("Which email should we use?")}
	if got := ExtractEmail(asked, "use new.address@mail.co.in"); got != "new.address@mail.co.in" {
		t.Fatalf("expected reply address, got %q", got)
	}
	if got := ExtractEmail(asked, "same as before"); got != "" {
		t.Fatalf("expected only the current message to be parsed, got %q", got)
	}
	if got := ExtractEmail([]transcript.Entry{user("mail me: traveller@example.org")}, "thanks"); got != "traveller@example.org" {
		t.Fatalf("expected scanned address, got %q", got)
	}
}

func TestExtractPackageAndPreferences(t *testing.T) {
	label, dest := ExtractPackage(nil, "I like the P001 package")
	if label != "Bali Explorer (P001)" || dest != "Bali, Indonesia" {
		t.Fatalf("unexpected package %q / %q", label, dest)
	}
	if label, _ := ExtractPackage(nil, "something in Europe"); label != "" {
		t.Fatalf("expected no package, got %q", label)
	}
	prefs := ExtractPreferences([]transcript.Entry{user("We love the beach")}, "and temple visits, maybe a spa day")
	if prefs != "beach, spa, temple" {
		t.Fatalf("unexpected preferences %q", prefs)
	}
}

func TestExtractBudget(t *testing.T) {
	tests := map[string]string{
		"budget is 45,000 rupees":   "45000",
		"around 1500 $":             "1500",
		"our budget is about 90000": "90000",
		"no idea yet":               "",
	}
	for in, want := range tests {
		if got := ExtractBudget(in); got != want {
			t.Fatalf("ExtractBudget(%q) = %q, want %q", in, got, want)
		}
	}
}

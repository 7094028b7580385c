package booking

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

// DefaultTripLength is added to the start date when no end date is given.
const DefaultTripLength = 5 * 24 * time.Hour

const isoLayout = "2006-01-02"

const monthAlternation = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

type dateLayout int

const (
	layoutISO dateLayout = iota
	layoutNumeric
	layoutDayOfMonth
	layoutDayMonth
	layoutMonthDay
)

var datePatterns = []struct {
	layout dateLayout
	re     *regexp.Regexp
}{
	{layoutISO, regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`)},
	{layoutNumeric, regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)},
	{layoutDayOfMonth, regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[ \t]+of[ \t]+(` + monthAlternation + `)[ \t,]+(\d{4})\b`)},
	{layoutDayMonth, regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[ \t]+(` + monthAlternation + `)[ \t,]+(\d{4})\b`)},
	{layoutMonthDay, regexp.MustCompile(`(?i)\b(` + monthAlternation + `)[ \t]+(\d{1,2})(?:st|nd|rd|th)?,?[ \t]+(\d{4})\b`)},
}

var endDateCueRE = regexp.MustCompile(`(?i)\b(?:end|to|return)\b`)

// dateMatch is one date literal found in text.
type dateMatch struct {
	start, end int
	date       time.Time
}

// findDates returns every parseable date literal in text with its byte span.
func findDates(text string) []dateMatch {
	var out []dateMatch
	for _, p := range datePatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			groups := make([]string, 3)
			for g := 0; g < 3; g++ {
				groups[g] = text[idx[2+2*g]:idx[3+2*g]]
			}
			d, ok := parseDateGroups(p.layout, groups)
			if !ok {
				continue
			}
			out = append(out, dateMatch{start: idx[0], end: idx[1], date: d})
		}
	}
	return out
}

func parseDateGroups(layout dateLayout, g []string) (time.Time, bool) {
	var year, month, day int
	switch layout {
	case layoutISO:
		year, month, day = atoi(g[0]), atoi(g[1]), atoi(g[2])
	case layoutNumeric:
		first, second := atoi(g[0]), atoi(g[1])
		// The first token is read as the month when it can be one.
		if first <= 12 {
			month, day = first, second
		} else {
			day, month = first, second
		}
		year = atoi(g[2])
	case layoutDayOfMonth, layoutDayMonth:
		day, month, year = atoi(g[0]), monthNumber(g[1]), atoi(g[2])
	case layoutMonthDay:
		month, day, year = monthNumber(g[0]), atoi(g[1]), atoi(g[2])
	}
	return validDate(year, month, day)
}

func validDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func monthNumber(name string) int {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return 0
	}
	months := []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
	for i, m := range months {
		if strings.HasPrefix(name, m) {
			return i + 1
		}
	}
	return 0
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// NormalizeDates returns every distinct date in text as YYYY-MM-DD, ascending.
func NormalizeDates(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range findDates(text) {
		iso := m.date.Format(isoLayout)
		if seen[iso] {
			continue
		}
		seen[iso] = true
		out = append(out, iso)
	}
	sort.Strings(out)
	return out
}

// ExtractDates returns the trip start and end dates found in the conversation.
func ExtractDates(entries []transcript.Entry, current string) (start, end string) {
	return extractDates(newView(entries, current))
}

func extractDates(v view) (start, end string) {
	dates := NormalizeDates(v.allText)
	if len(dates) == 0 {
		return "", ""
	}
	start = dates[0]
	if len(dates) == 1 && endDateCueRE.MatchString(v.current) {
		return start, start
	}
	return start, DeriveEndDate(start)
}

// DeriveEndDate returns start plus DefaultTripLength, or "" when start is not an ISO date.
func DeriveEndDate(start string) string {
	d, err := time.Parse(isoLayout, start)
	if err != nil {
		return ""
	}
	return d.Add(DefaultTripLength).Format(isoLayout)
}

package booking

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

const (
	minPartySize = 1
	maxPartySize = 20
	// contextWindow is how many bytes either side of a candidate are checked for date, price or time markers.
	contextWindow = 10
	// fallbackMessages is how many recent user messages the standalone-number fallback scans.
	fallbackMessages = 5
)

const travellerNouns = `(?:persons?|people|pax|travell?ers?|adults?|guests?|passengers?)`

var (
	partySizePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d+)\s*` + travellerNouns),
		regexp.MustCompile(`\b(?:we are|there are|party of|group of)\s+(\d+)\b`),
		regexp.MustCompile(`\bfor\s+(\d+)\b`),
		regexp.MustCompile(`\b(?:how many|number of)\s+` + travellerNouns + `\s*(?:are|will|do|would)?\s*(?:you|we|there)?\s*(?:be)?\s*(\d+)\b`),
	}
	partySizeCues = [][]string{{"how many", "people"}, {"people will be travel"}}

	firstSmallNumberRE = regexp.MustCompile(`\b(\d{1,2})\b`)
	correctionRE       = regexp.MustCompile(`(\d+)\s*(?:people|persons?|guests?|pax|travell?ers?)`)
	correctionPrefixRE = regexp.MustCompile(`(?i)^no\b`)

	slashDateRE  = regexp.MustCompile(`\d/\d`)
	timeRE       = regexp.MustCompile(`:\d`)
	currencyRE   = regexp.MustCompile(`\brs\b|\brupees\b|\busd\b|\bdollars\b|[$₹€£]`)
	standaloneRE = regexp.MustCompile(`\b\d{1,2}\b`)
)

type partyCandidate struct {
	pos   int
	value int
}

// ExtractPartySize returns the number of travellers as a decimal string, or "".
func ExtractPartySize(entries []transcript.Entry, current string) string {
	return extractPartySize(newView(entries, current))
}

func extractPartySize(v view) string {
	if v.askedPartySize() {
		if n, ok := firstPartySize(strings.ToLower(v.current)); ok {
			return strconv.Itoa(n)
		}
	}

	text := strings.ToLower(v.allText)
	dates := findDates(text)
	var candidates []partyCandidate
	for _, re := range partySizePatterns {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			numStart, numEnd := idx[2], idx[3]
			n, ok := partySize(text[numStart:numEnd])
			if !ok || insideDate(dates, numStart, numEnd) || noisyContext(text, idx[0], idx[1]) {
				continue
			}
			candidates = append(candidates, partyCandidate{pos: numStart, value: n})
		}
	}
	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].pos < candidates[j].pos })
		return strconv.Itoa(candidates[len(candidates)-1].value)
	}
	return standalonePartySize(v.recentUserLines(fallbackMessages))
}

func (v view) askedPartySize() bool {
	for _, cues := range partySizeCues {
		all := true
		for _, cue := range cues {
			if !strings.Contains(v.lastBot, cue) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// standalonePartySize finds the newest bare 1-2 digit number that is not part of a date, time or decimal.
func standalonePartySize(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.ToLower(lines[i])
		dates := findDates(line)
		matches := standaloneRE.FindAllStringIndex(line, -1)
		for j := len(matches) - 1; j >= 0; j-- {
			start, end := matches[j][0], matches[j][1]
			if insideDate(dates, start, end) || touchesSeparator(line, start, end) {
				continue
			}
			if n, ok := partySize(line[start:end]); ok {
				return strconv.Itoa(n)
			}
		}
	}
	return ""
}

// firstPartySize reads a direct answer to the party size question, skipping numerals that belong to a date, time or decimal.
func firstPartySize(line string) (int, bool) {
	dates := findDates(line)
	for _, m := range standaloneRE.FindAllStringIndex(line, -1) {
		if insideDate(dates, m[0], m[1]) || touchesSeparator(line, m[0], m[1]) {
			continue
		}
		if n, ok := partySize(line[m[0]:m[1]]); ok {
			return n, true
		}
	}
	return 0, false
}

func partySize(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < minPartySize || n > maxPartySize {
		return 0, false
	}
	return n, true
}

func insideDate(dates []dateMatch, start, end int) bool {
	for _, d := range dates {
		if start < d.end && end > d.start {
			return true
		}
	}
	return false
}

// noisyContext reports whether the match sits next to a date, an amount or a clock time.
func noisyContext(text string, start, end int) bool {
	lo := runeFloor(text, start-contextWindow)
	hi := runeCeil(text, end+contextWindow)
	window := text[lo:hi]
	if slashDateRE.MatchString(window) || timeRE.MatchString(window) {
		return true
	}
	return currencyRE.MatchString(text[lo:start]) || currencyRE.MatchString(text[end:hi])
}

func touchesSeparator(text string, start, end int) bool {
	isSep := func(b byte) bool { return b == '/' || b == '-' || b == '.' || b == ':' }
	if start > 0 && isSep(text[start-1]) {
		return true
	}
	return end < len(text) && isSep(text[end])
}

func runeFloor(text string, i int) int {
	if i <= 0 {
		return 0
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

func runeCeil(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}

// applyCorrection handles "no, 3 people" style replies once the booking is otherwise complete.
func applyCorrection(state State, current string) State {
	current = strings.TrimSpace(current)
	if !correctionPrefixRE.MatchString(current) || !state.Has(coreFields...) {
		return state
	}
	lower := strings.ToLower(current)
	raw := ""
	if m := correctionRE.FindStringSubmatch(lower); m != nil {
		raw = m[1]
	} else if m := firstSmallNumberRE.FindStringSubmatch(lower); m != nil {
		raw = m[1]
	}
	if n, ok := partySize(raw); ok {
		state.NumberOfPeople = strconv.Itoa(n)
	}
	return state
}

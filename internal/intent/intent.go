// Package intent classifies inbound WhatsApp messages with an ordered keyword rule table.
package intent

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	Greeting        Intent = "greeting"
	PriceInquiry    Intent = "price_inquiry"
	Finalize        Intent = "finalize"
	BookTrip        Intent = "book_trip"
	BookTripNow     Intent = "book_trip_now"
	TravelDocument  Intent = "travel_document"
	PackageQuestion Intent = "package_question"
	BookingInfo     Intent = "booking_info"
	Fallback        Intent = "fallback"
)

// Input is what a rule sees.
type Input struct {
	Message string
	// PackageSelected is true once the conversation has chosen a package.
	PackageSelected bool
}

// Rule maps a predicate to an intent. Rules are evaluated in order; the first match wins.
type Rule struct {
	Intent Intent
	Match  func(in Input, normalized string) bool
}

var (
	greetingRE        = regexp.MustCompile(`^(?:hello|hi|hey|good morning|good afternoon|good evening)[\s.!?,]*$`)
	priceRE           = keywordPattern("price", "cost", "rate", "quote", "inquiry", "budget")
	travelDocumentRE  = keywordPattern("passport", "visa", "document", "id proof", "identity proof", "entry requirement", "travel insurance")
	packageQuestionRE = keywordPattern("accommodation", "hotel", "stay", "resort", "room", "nearby", "attraction", "places", "sightseeing", "food", "restaurant", "meal", "cuisine", "itinerary", "activity", "activities", "inclusion")
	bookingInfoRE     = keywordPattern("book", "booking", "reserve", "travel", "trip", "package", "p001", "bali", "person", "people", "pax", "date", "when", "from", "to", "start", "end")
)

// keywordPattern matches any keyword at the start of a word, so inflections
// like "travelling", "booked" and "documentation" still count. Keywords are
// not matched mid-word: "rate" does not fire on "celebrate".
func keywordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\w*`)
}

func exact(phrases ...string) func(Input, string) bool {
	return func(_ Input, normalized string) bool {
		for _, p := range phrases {
			if normalized == p {
				return true
			}
		}
		return false
	}
}

func matches(re *regexp.Regexp) func(Input, string) bool {
	return func(_ Input, normalized string) bool { return re.MatchString(normalized) }
}

// DefaultRules is the precedence order used in production. Commands come before
// generic booking info even though "book" appears in both.
var DefaultRules = []Rule{
	{Intent: Greeting, Match: matches(greetingRE)},
	{Intent: PriceInquiry, Match: matches(priceRE)},
	{Intent: Finalize, Match: exact("finalize")},
	{Intent: BookTrip, Match: exact("book my trip", "book trip", "book")},
	{Intent: BookTripNow, Match: exact("book my trip now")},
	{Intent: TravelDocument, Match: matches(travelDocumentRE)},
	{Intent: PackageQuestion, Match: func(in Input, normalized string) bool {
		return in.PackageSelected && packageQuestionRE.MatchString(normalized)
	}},
	{Intent: BookingInfo, Match: matches(bookingInfoRE)},
}

// Classifier evaluates a rule table.
type Classifier struct {
	rules []Rule
}

// NewClassifier uses DefaultRules when rules is empty.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the first matching intent, or Fallback.
func (c *Classifier) Classify(in Input) Intent {
	normalized := Normalize(in.Message)
	if normalized == "" {
		return Fallback
	}
	for _, r := range c.rules {
		if r.Match(in, normalized) {
			return r.Intent
		}
	}
	return Fallback
}

// Normalize lowercases, trims and collapses inner whitespace.
func Normalize(message string) string {
	return strings.Join(strings.Fields(strings.ToLower(message)), " ")
}

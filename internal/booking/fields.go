package booking

import (
	"regexp"
	"strings"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

var (
	emailRE       = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	packageRE     = regexp.MustCompile(`(?i)\b(?:bali|p001|explorer)\b`)
	emailCues     = []string{"email", "e-mail"}
	budgetPattern = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:rs\b|rupees|usd|dollars|\$|₹)`),
		regexp.MustCompile(`(?i)(?:budget|price|cost|rate).{0,20}?(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:per person|total|for all)`),
	}
)

// PreferenceKeywords are the interest tags recognised in conversation.
var PreferenceKeywords = []string{
	"beach", "culture", "adventure", "relaxation", "food",
	"shopping", "spa", "temple", "volcano", "rice terrace",
}

// ExtractEmail returns the first email address the customer gave.
func ExtractEmail(entries []transcript.Entry, current string) string {
	return extractEmail(newView(entries, current))
}

func extractEmail(v view) string {
	if v.botAsked(emailCues...) {
		return emailRE.FindString(v.current)
	}
	return emailRE.FindString(v.userText())
}

// ExtractPackage returns the live package label and destination when the conversation mentions it.
func ExtractPackage(entries []transcript.Entry, current string) (label, destination string) {
	return extractPackage(newView(entries, current))
}

// A reply to a package prompt is part of allText, so one scan covers both cases.
func extractPackage(v view) (string, string) {
	if packageRE.MatchString(v.allText) {
		return LivePackage.Label(), LivePackage.Destination
	}
	return "", ""
}

// ExtractPreferences returns matched interest tags joined by ", ".
func ExtractPreferences(entries []transcript.Entry, current string) string {
	return extractPreferences(newView(entries, current))
}

func extractPreferences(v view) string {
	lower := strings.ToLower(v.allText)
	var hits []string
	for _, kw := range PreferenceKeywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	return strings.Join(hits, ", ")
}

// ExtractBudget returns the first amount mentioned by the customer, without separators.
func ExtractBudget(text string) string {
	for _, re := range budgetPattern {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ReplaceAll(m[1], ",", "")
		}
	}
	return ""
}

package booking

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

var (
	nameCues = []string{"full name", "name?"}

	capitalizedRunRE = regexp.MustCompile(`\b[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)+\b`)
	introNameREs     = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmy name is[ \t]+([a-z]+(?:[ \t]+[a-z]+){0,3})`),
		regexp.MustCompile(`(?i)\bi am[ \t]+([a-z]+(?:[ \t]+[a-z]+){0,3})`),
		regexp.MustCompile(`(?i)\bi'?m[ \t]+([a-z]+(?:[ \t]+[a-z]+){0,3})`),
	}
	nameReplyRejectRE = regexp.MustCompile(`[0-9@]`)
)

// ExtractName finds the customer's name. A direct reply to a name prompt wins;
// otherwise the first acceptable candidate in user text is used.
func ExtractName(entries []transcript.Entry, current string) string {
	return extractName(newView(entries, current))
}

func extractName(v view) string {
	if v.botAsked(nameCues...) {
		if name := nameFromReply(v.current); name != "" {
			return name
		}
	}
	text := v.userText()
	for _, match := range capitalizedRunRE.FindAllString(text, -1) {
		if name := firstNameRun(strings.Fields(match)); name != "" {
			return name
		}
	}
	for _, re := range introNameREs {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if name := leadingNameRun(strings.Fields(m[1])); name != "" {
				return name
			}
		}
	}
	return nameFromEarlierPrompt(v)
}

func nameFromReply(reply string) string {
	reply = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(reply), ".!,"))
	if reply == "" || nameReplyRejectRE.MatchString(reply) {
		return ""
	}
	return titleCase(reply)
}

// nameFromEarlierPrompt returns the most recent user reply that directly followed a name prompt.
func nameFromEarlierPrompt(v view) string {
	for i := len(v.entries) - 1; i > 0; i-- {
		e := v.entries[i]
		prev := v.entries[i-1]
		if e.IsBot() || !prev.IsBot() {
			continue
		}
		lower := strings.ToLower(prev.Text)
		asked := false
		for _, cue := range nameCues {
			if strings.Contains(lower, cue) {
				asked = true
				break
			}
		}
		if !asked {
			continue
		}
		if name := nameFromReply(e.Text); name != "" && !isPackageName(name) {
			return name
		}
	}
	return ""
}

// firstNameRun splits words at filler words and returns the first run of two or more name words.
func firstNameRun(words []string) string {
	var run []string
	flush := func() string {
		defer func() { run = run[:0] }()
		if len(run) < 2 {
			return ""
		}
		name := titleCase(strings.Join(run, " "))
		if isPackageName(name) {
			return ""
		}
		return name
	}
	for _, w := range words {
		if isCommonWord(w) {
			if name := flush(); name != "" {
				return name
			}
			continue
		}
		run = append(run, w)
	}
	return flush()
}

// leadingNameRun keeps words up to the first filler word.
func leadingNameRun(words []string) string {
	var run []string
	for _, w := range words {
		if isCommonWord(w) {
			break
		}
		run = append(run, w)
	}
	if len(run) < 2 {
		return ""
	}
	name := titleCase(strings.Join(run, " "))
	if isPackageName(name) {
		return ""
	}
	return name
}

func isPackageName(name string) bool {
	return strings.EqualFold(name, LivePackage.Name) || strings.EqualFold(name, LivePackage.Label())
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func isCommonWord(word string) bool {
	common := map[string]bool{
		"the": true, "and": true, "for": true, "are": true, "but": true,
		"not": true, "you": true, "all": true, "can": true, "with": true,
		"was": true, "one": true, "our": true, "out": true, "day": true,
		"had": true, "has": true, "how": true, "from": true, "this": true,
		"may": true, "new": true, "now": true, "see": true, "what": true,
		"who": true, "get": true, "going": true, "just": true, "like": true,
		"want": true, "need": true, "have": true, "will": true, "would": true,
		"yes": true, "no": true, "hi": true, "hey": true, "hello": true,
		"thanks": true, "thank": true, "please": true, "ok": true, "okay": true,
		"sure": true, "good": true, "great": true, "fine": true, "well": true,
		"interested": true, "looking": true, "book": true, "booking": true,
		"trip": true, "travel": true, "traveling": true, "travelling": true,
		"package": true, "tour": true, "holiday": true, "vacation": true,
		"ready": true, "morning": true, "afternoon": true, "evening": true,
		"people": true, "person": true, "family": true, "friends": true,
		"date": true, "dates": true, "price": true, "finalize": true,
		"january": true, "february": true, "march": true, "april": true,
		"june": true, "july": true, "august": true, "september": true,
		"october": true, "november": true, "december": true,
	}
	return common[strings.ToLower(strings.Trim(word, ".,!?"))]
}

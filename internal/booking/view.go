package booking

import (
	"strings"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

// view is the text an extraction pass works over.
type view struct {
	entries []transcript.Entry
	current string
	// lastBot is the lowercased most recent assistant message.
	lastBot string
	// userLines holds user-authored messages, current message last.
	userLines []string
	// allText is every entry plus the current message, one per line.
	allText string
}

func newView(entries []transcript.Entry, current string) view {
	v := view{entries: entries, current: strings.TrimSpace(current)}
	lines := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		lines = append(lines, e.Text)
		if e.IsBot() {
			v.lastBot = strings.ToLower(e.Text)
			continue
		}
		v.userLines = append(v.userLines, e.Text)
	}
	if v.current != "" {
		lines = append(lines, v.current)
		v.userLines = append(v.userLines, v.current)
	}
	v.allText = strings.Join(lines, "\n")
	return v
}

func (v view) userText() string {
	return strings.Join(v.userLines, "\n")
}

func (v view) botAsked(cues ...string) bool {
	if v.lastBot == "" {
		return false
	}
	for _, cue := range cues {
		if strings.Contains(v.lastBot, cue) {
			return true
		}
	}
	return false
}

// recentUserLines returns the newest n user messages, current message last.
func (v view) recentUserLines(n int) []string {
	if len(v.userLines) <= n {
		return v.userLines
	}
	return v.userLines[len(v.userLines)-n:]
}

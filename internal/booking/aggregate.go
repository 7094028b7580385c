package booking

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
)

// Aggregate runs every extractor over the transcript plus the current message
// and merges the results. It is pure and never fails; unknown fields stay empty.
func Aggregate(entries []transcript.Entry, current string) State {
	v := newView(entries, current)
	var s State
	s.CustomerName = extractName(v)
	s.Package, s.Destination = extractPackage(v)
	s.StartDate, s.EndDate = extractDates(v)
	s.NumberOfPeople = extractPartySize(v)
	s.Email = extractEmail(v)
	s.Preferences = extractPreferences(v)
	s.Budget = ExtractBudget(v.userText())
	return applyCorrection(s, v.current)
}

// Aggregator memoizes Aggregate per user and transcript snapshot.
type Aggregator struct {
	memo *cache.Cache
}

// NewAggregator creates an Aggregator whose memo entries expire after ttl.
func NewAggregator(ttl time.Duration) *Aggregator {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Aggregator{memo: cache.New(ttl, 2*ttl)}
}

// Aggregate returns the booking state for userID, reusing a cached result when
// neither the transcript nor the current message changed.
func (a *Aggregator) Aggregate(userID string, entries []transcript.Entry, current string) State {
	if a == nil || a.memo == nil {
		return Aggregate(entries, current)
	}
	key := memoKey(userID, entries, current)
	if cached, ok := a.memo.Get(key); ok {
		return cached.(State)
	}
	state := Aggregate(entries, current)
	a.memo.SetDefault(key, state)
	return state
}

// memoKey identifies a snapshot by length, newest entry and a content hash.
// Length alone is not enough once the transcript is capped.
func memoKey(userID string, entries []transcript.Entry, current string) string {
	h := fnv.New64a()
	for _, e := range entries {
		_, _ = h.Write([]byte(e.Speaker))
		_, _ = h.Write([]byte(e.Text))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte(current))
	return fmt.Sprintf("%s|%d|%x", userID, len(entries), h.Sum64())
}

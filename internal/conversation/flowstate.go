package conversation

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// Stage is a user's position in the booking flow.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageCollecting      Stage = "collecting_booking_info"
	StageReadyToFinalize Stage = "ready_to_finalize"
	// StageFinalized means the day-wise dispatch succeeded and vendor quotes are pending.
	StageFinalized      Stage = "finalized"
	StageQuotesReceived Stage = "quotes_received"
)

// FlowState is the per-user state that cannot be recomputed from the transcript.
type FlowState struct {
	Stage            Stage     `json:"stage"`
	InBookingProcess bool      `json:"in_booking_process"`
	LastSheetRecord  string    `json:"last_sheet_record,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FlowStore keeps FlowState per user with a sliding TTL. Entries are cheap to
// lose: the booking fields themselves are always recomputed from the transcript.
type FlowStore struct {
	cache *cache.Cache
}

// NewFlowStore creates a store whose entries expire ttl after their last write.
// onEvict, when non-nil, is called for every entry removed by expiry, Delete or Flush.
func NewFlowStore(ttl time.Duration, onEvict func(userID string)) *FlowStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := cache.New(ttl, ttl/2)
	if onEvict != nil {
		c.OnEvicted(func(userID string, _ interface{}) { onEvict(userID) })
	}
	return &FlowStore{cache: c}
}

// Get returns the user's state, or an idle state when none is stored.
func (s *FlowStore) Get(userID string) FlowState {
	if v, ok := s.cache.Get(userID); ok {
		return v.(FlowState)
	}
	return FlowState{Stage: StageIdle}
}

// Put stores state and restarts its TTL.
func (s *FlowStore) Put(userID string, state FlowState) {
	if state.Stage == "" {
		state.Stage = StageIdle
	}
	s.cache.SetDefault(userID, state)
}

// Delete drops the user's state.
func (s *FlowStore) Delete(userID string) {
	s.cache.Delete(userID)
}

// Flush removes every entry one by one so each removal is reported to onEvict.
func (s *FlowStore) Flush() {
	for userID := range s.cache.Items() {
		s.cache.Delete(userID)
	}
}

// Len is the number of live entries.
func (s *FlowStore) Len() int {
	return s.cache.ItemCount()
}

// NoticeGuard remembers which users were already sent a failure notice so the
// same notice is not repeated until the entry expires or is flushed.
type NoticeGuard struct {
	cache *cache.Cache
}

// NewNoticeGuard creates a guard whose marks last ttl.
func NewNoticeGuard(ttl time.Duration) *NoticeGuard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &NoticeGuard{cache: cache.New(ttl, ttl)}
}

// Claim marks notice as sent to userID. It returns false when the mark already existed.
func (g *NoticeGuard) Claim(userID, notice string) bool {
	return g.cache.Add(userID+"|"+notice, struct{}{}, cache.DefaultExpiration) == nil
}

// Clear forgets every notice sent to userID.
func (g *NoticeGuard) Clear(userID string) {
	prefix := userID + "|"
	for key := range g.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			g.cache.Delete(key)
		}
	}
}

// Flush forgets every notice.
func (g *NoticeGuard) Flush() {
	g.cache.Flush()
}

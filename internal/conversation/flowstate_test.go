package conversation

import (
	"sync"
	"testing"
	"time"
)

func TestFlowStoreDefaultsToIdle(t *testing.T) {
	s := NewFlowStore(time.Minute, nil)
	if got := s.Get("u1").Stage; got != StageIdle {
		t.Fatalf("stage = %q, want idle", got)
	}
	s.Put("u1", FlowState{InBookingProcess: true})
	got := s.Get("u1")
	if got.Stage != StageIdle || !got.InBookingProcess {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestFlowStoreReportsEvictions(t *testing.T) {
	var (
		mu      sync.Mutex
		evicted []string
	)
	s := NewFlowStore(time.Minute, func(userID string) {
		mu.Lock()
		evicted = append(evicted, userID)
		mu.Unlock()
	})
	s.Put("u1", FlowState{Stage: StageCollecting})
	s.Put("u2", FlowState{Stage: StageFinalized})

	s.Delete("u1")
	s.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(evicted) != 2 {
		t.Fatalf("evicted = %v, want both users", evicted)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d after flush", s.Len())
	}
}

func TestFlowStoreExpiresEntries(t *testing.T) {
	s := NewFlowStore(20*time.Millisecond, nil)
	s.Put("u1", FlowState{Stage: StageCollecting})
	time.Sleep(40 * time.Millisecond)
	if got := s.Get("u1").Stage; got != StageIdle {
		t.Fatalf("stage = %q after ttl, want idle", got)
	}
}

func TestNoticeGuard(t *testing.T) {
	g := NewNoticeGuard(time.Minute)
	if !g.Claim("u1", MsgApology) {
		t.Fatal("first claim should succeed")
	}
	if g.Claim("u1", MsgApology) {
		t.Fatal("second claim should be suppressed")
	}
	if !g.Claim("u2", MsgApology) {
		t.Fatal("other users are independent")
	}

	g.Clear("u1")
	if !g.Claim("u1", MsgApology) {
		t.Fatal("claim after Clear should succeed")
	}

	g.Flush()
	if !g.Claim("u2", MsgApology) {
		t.Fatal("claim after Flush should succeed")
	}
}

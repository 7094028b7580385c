package transcript

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryStore keeps transcripts in process memory. Used for development and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	maxEntries int
	entries    map[string][]Entry
	quotes     map[string][]QuoteRecord
}

// NewMemoryStore creates an in-memory store. maxEntries <= 0 uses DefaultMaxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		entries:    make(map[string][]Entry),
		quotes:     make(map[string][]QuoteRecord),
	}
}

func (s *MemoryStore) Append(_ context.Context, userID string, entry Entry) error {
	if userID == "" {
		return errors.New("transcript: user id required")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.entries[userID], entry)
	if len(list) > s.maxEntries {
		list = append([]Entry(nil), list[len(list)-s.maxEntries:]...)
	}
	s.entries[userID] = list
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries[userID]))
	copy(out, s.entries[userID])
	return out, nil
}

func (s *MemoryStore) SaveQuote(_ context.Context, userID string, record QuoteRecord) error {
	if userID == "" {
		return errors.New("transcript: user id required")
	}
	if record.ReceivedAt.IsZero() {
		record.ReceivedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records := append(s.quotes[userID], record)
	if len(records) > MaxQuoteRecords {
		records = append([]QuoteRecord(nil), records[len(records)-MaxQuoteRecords:]...)
	}
	s.quotes[userID] = records
	return nil
}

func (s *MemoryStore) LatestQuote(_ context.Context, userID string) (QuoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.quotes[userID]
	if len(records) == 0 {
		return QuoteRecord{}, ErrNotFound
	}
	return records[len(records)-1], nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	delete(s.quotes, userID)
	return nil
}

var _ Store = (*MemoryStore)(nil)

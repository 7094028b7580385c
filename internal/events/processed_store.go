// Package events remembers which provider webhook events were already handled,
// so redelivered WhatsApp messages are answered once.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// DefaultRetention is how long an event id is remembered.
const DefaultRetention = 24 * time.Hour

// Marker records event ids. MarkProcessed returns false when the id was
// already recorded for provider. Unmark forgets an id whose event was never
// handled, so a redelivery is accepted.
type Marker interface {
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
	Unmark(ctx context.Context, provider, eventID string) error
}

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProcessedStore records handled events in Postgres.
type ProcessedStore struct {
	pool rowQuerier
}

var (
	_ Marker = (*ProcessedStore)(nil)
	_ Marker = (*RedisProcessedStore)(nil)
	_ Marker = (*MemoryProcessedStore)(nil)
)

func NewProcessedStore(pool *pgxpool.Pool) *ProcessedStore {
	if pool == nil {
		panic("events: pgx pool required")
	}
	return &ProcessedStore{pool: pool}
}

func newProcessedStoreWithExec(exec rowQuerier) *ProcessedStore {
	if exec == nil {
		panic("events: exec required")
	}
	return &ProcessedStore{pool: exec}
}

// AlreadyProcessed checks if we've seen this provider event id.
func (s *ProcessedStore) AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	query := `SELECT 1 FROM processed_events WHERE provider = $1 AND event_id = $2`
	var exists int
	if err := s.pool.QueryRow(ctx, query, provider, eventID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("events: check processed: %w", err)
	}
	return true, nil
}

// MarkProcessed inserts an event id for the provider, returning false if it already exists.
func (s *ProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	query := `
		INSERT INTO processed_events (provider, event_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	ct, err := s.pool.Exec(ctx, query, provider, eventID)
	if err != nil {
		return false, fmt.Errorf("events: mark processed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *ProcessedStore) Unmark(ctx context.Context, provider, eventID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM processed_events WHERE provider = $1 AND event_id = $2`, provider, eventID); err != nil {
		return fmt.Errorf("events: unmark processed: %w", err)
	}
	return nil
}

// Purge deletes ids recorded before cutoff and returns how many were removed.
func (s *ProcessedStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := s.pool.Exec(ctx, `DELETE FROM processed_events WHERE processed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("events: purge processed: %w", err)
	}
	return ct.RowsAffected(), nil
}

// RedisProcessedStore records handled events with SET NX and a retention TTL,
// which lets several instances share one view.
type RedisProcessedStore struct {
	client    *redis.Client
	retention time.Duration
}

func NewRedisProcessedStore(client *redis.Client, retention time.Duration) *RedisProcessedStore {
	if client == nil {
		panic("events: redis client required")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisProcessedStore{client: client, retention: retention}
}

func (s *RedisProcessedStore) MarkProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, redisKey(provider, eventID), 1, s.retention).Result()
	if err != nil {
		return false, fmt.Errorf("events: mark processed: %w", err)
	}
	return ok, nil
}

func (s *RedisProcessedStore) Unmark(ctx context.Context, provider, eventID string) error {
	if err := s.client.Del(ctx, redisKey(provider, eventID)).Err(); err != nil {
		return fmt.Errorf("events: unmark processed: %w", err)
	}
	return nil
}

func redisKey(provider, eventID string) string {
	return "processed:" + provider + ":" + eventID
}

// MemoryProcessedStore is the single-instance fallback.
type MemoryProcessedStore struct {
	seen *cache.Cache
}

func NewMemoryProcessedStore(retention time.Duration) *MemoryProcessedStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MemoryProcessedStore{seen: cache.New(retention, time.Hour)}
}

func (s *MemoryProcessedStore) MarkProcessed(_ context.Context, provider, eventID string) (bool, error) {
	if err := s.seen.Add(provider+":"+eventID, struct{}{}, cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryProcessedStore) Unmark(_ context.Context, provider, eventID string) error {
	s.seen.Delete(provider + ":" + eventID)
	return nil
}

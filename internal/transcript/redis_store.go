package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix = "whatsapp:transcript:"
	quoteKeyPrefix      = "whatsapp:quotes:"
)

// RedisStore persists transcripts as capped Redis lists.
type RedisStore struct {
	redis      *redis.Client
	tracer     trace.Tracer
	maxEntries int64
	ttl        time.Duration
}

// NewRedisStore returns nil when no client is given so callers can fall back to memory.
func NewRedisStore(client *redis.Client, maxEntries int, ttl time.Duration) *RedisStore {
	if client == nil {
		return nil
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &RedisStore{
		redis:      client,
		tracer:     otel.Tracer("whatsapp-bot.internal.transcript"),
		maxEntries: int64(maxEntries),
		ttl:        ttl,
	}
}

func (s *RedisStore) Append(ctx context.Context, userID string, entry Entry) error {
	if userID == "" {
		return errors.New("transcript: user id required")
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("transcript: marshal entry: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "transcript.append")
	defer span.End()

	key := transcriptKeyPrefix + userID
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -s.maxEntries, -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("transcript: append entry: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, userID string) ([]Entry, error) {
	ctx, span := s.tracer.Start(ctx, "transcript.list")
	defer span.End()

	raw, err := s.redis.LRange(ctx, transcriptKeyPrefix+userID, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		return nil, fmt.Errorf("transcript: list entries: %w", err)
	}
	out := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisStore) SaveQuote(ctx context.Context, userID string, record QuoteRecord) error {
	if userID == "" {
		return errors.New("transcript: user id required")
	}
	if record.ReceivedAt.IsZero() {
		record.ReceivedAt = time.Now().UTC()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("transcript: marshal quote: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "transcript.save_quote")
	defer span.End()

	key := quoteKeyPrefix + userID
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -MaxQuoteRecords, -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("transcript: save quote: %w", err)
	}
	return nil
}

// LatestQuote scans the quote list from the newest end.
func (s *RedisStore) LatestQuote(ctx context.Context, userID string) (QuoteRecord, error) {
	ctx, span := s.tracer.Start(ctx, "transcript.latest_quote")
	defer span.End()

	raw, err := s.redis.LRange(ctx, quoteKeyPrefix+userID, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		return QuoteRecord{}, fmt.Errorf("transcript: load quotes: %w", err)
	}
	for i := len(raw) - 1; i >= 0; i-- {
		var record QuoteRecord
		if err := json.Unmarshal([]byte(raw[i]), &record); err != nil {
			span.RecordError(err)
			continue
		}
		return record, nil
	}
	return QuoteRecord{}, ErrNotFound
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, transcriptKeyPrefix+userID, quoteKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("transcript: delete user: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)

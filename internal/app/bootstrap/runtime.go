package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/PrathamRathore123/Whatsapp-Bot/internal/config"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/events"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildTranscriptStore persists transcripts in Redis when a client is
// available and falls back to process memory otherwise.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) transcript.Store {
	if logger == nil {
		logger = logging.Default()
	}
	var (
		maxEntries int
		ttl        time.Duration
	)
	if cfg != nil {
		maxEntries, ttl = cfg.TranscriptMaxEntries, cfg.TranscriptTTL
	}
	if redisClient == nil {
		logger.Warn("transcripts kept in memory; they will not survive a restart")
		return transcript.NewMemoryStore(maxEntries)
	}
	return transcript.NewRedisStore(redisClient, maxEntries, ttl)
}

// BuildPostgresPool opens the bookings database. A nil pool and nil error
// mean DATABASE_URL is unset.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	logger.Info("postgres connected")
	return pool, nil
}

// BuildProcessedStore picks where delivered message ids are remembered:
// Postgres, then Redis, then memory. The second value is non-nil only for
// Postgres, which needs a purge worker.
func BuildProcessedStore(pool *pgxpool.Pool, redisClient *redis.Client, cfg *appconfig.Config) (events.Marker, *events.ProcessedStore) {
	retention := events.DefaultRetention
	if cfg != nil && cfg.WebhookDedupeTTL > 0 {
		retention = cfg.WebhookDedupeTTL
	}
	switch {
	case pool != nil:
		store := events.NewProcessedStore(pool)
		return store, store
	case redisClient != nil:
		return events.NewRedisProcessedStore(redisClient, retention), nil
	default:
		return events.NewMemoryProcessedStore(retention), nil
	}
}

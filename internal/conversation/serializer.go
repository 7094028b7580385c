package conversation

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/observability/metrics"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// ErrSerializerClosed is returned for jobs submitted after Close.
var ErrSerializerClosed = errors.New("conversation: serializer closed")

// Job is one unit of work for a single user.
type Job func(ctx context.Context) error

// Serializer runs jobs FIFO per key. Jobs for the same key never overlap;
// jobs for different keys run concurrently. A lane exists only while it has
// pending work.
type Serializer struct {
	logger  *logging.Logger
	metrics *metrics.BotMetrics

	mu     sync.Mutex
	lanes  map[string]*lane
	closed bool
	wg     sync.WaitGroup
}

type lane struct {
	pending []queuedJob
}

type queuedJob struct {
	ctx  context.Context
	job  Job
	done chan error
}

// NewSerializer creates an empty serializer.
func NewSerializer(logger *logging.Logger, m *metrics.BotMetrics) *Serializer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Serializer{
		logger:  logger,
		metrics: m,
		lanes:   make(map[string]*lane),
	}
}

// Submit queues job behind any pending work for key. The returned channel
// receives the job's result exactly once. Callers that do not care may ignore it.
func (s *Serializer) Submit(ctx context.Context, key string, job Job) <-chan error {
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan error, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		done <- ErrSerializerClosed
		return done
	}
	l, running := s.lanes[key]
	if !running {
		l = &lane{}
		s.lanes[key] = l
		s.wg.Add(1)
	}
	l.pending = append(l.pending, queuedJob{ctx: ctx, job: job, done: done})
	count := len(s.lanes)
	s.mu.Unlock()

	s.metrics.SetQueueLanes(count)
	if !running {
		go s.drain(key, l)
	}
	return done
}

// Lanes reports how many keys currently have pending or running work.
func (s *Serializer) Lanes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lanes)
}

// Close rejects new jobs and waits for queued ones to finish or ctx to end.
func (s *Serializer) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("conversation: serializer drain: %w", ctx.Err())
	}
}

func (s *Serializer) drain(key string, l *lane) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		if len(l.pending) == 0 {
			delete(s.lanes, key)
			count := len(s.lanes)
			s.mu.Unlock()
			s.metrics.SetQueueLanes(count)
			return
		}
		next := l.pending[0]
		l.pending[0] = queuedJob{}
		l.pending = l.pending[1:]
		s.mu.Unlock()

		next.done <- s.run(key, next)
	}
}

func (s *Serializer) run(key string, q queuedJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("queued job panicked",
				"user_id", logging.RedactPhone(key),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("conversation: job panicked: %v", r)
		}
	}()
	return q.job(q.ctx)
}

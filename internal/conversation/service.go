package conversation

import (
	"context"
	"errors"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/transcript"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

// Service routes every per-user operation through one Serializer so chat
// turns, quote pushes and notifications for a user never interleave.
type Service struct {
	engine *Engine
	queue  *Serializer
	logger *logging.Logger
}

// NewService pairs engine with queue.
func NewService(engine *Engine, queue *Serializer, logger *logging.Logger) (*Service, error) {
	if engine == nil {
		return nil, errors.New("conversation: engine is required")
	}
	if queue == nil {
		return nil, errors.New("conversation: serializer is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{engine: engine, queue: queue, logger: logger}, nil
}

// Enqueue schedules a chat turn and returns immediately. The turn outlives
// ctx's cancellation; failures are logged and reported on the returned channel.
func (s *Service) Enqueue(ctx context.Context, msg InboundMessage) <-chan error {
	return s.queue.Submit(context.WithoutCancel(ctx), msg.From, func(ctx context.Context) error {
		_, err := s.engine.HandleMessage(ctx, msg)
		if err != nil {
			s.logger.WithUser(msg.From).Error("message processing failed", "message_id", msg.MessageID, "error", err)
		}
		return err
	})
}

// IngestQuotes runs quote ingestion in the user's lane and waits for it.
func (s *Service) IngestQuotes(ctx context.Context, userID string, record transcript.QuoteRecord) (Receipt, error) {
	var receipt Receipt
	err := s.wait(ctx, userID, func(ctx context.Context) error {
		var err error
		receipt, err = s.engine.IngestQuotes(ctx, userID, record)
		return err
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// Notify sends a backend notification in the user's lane and waits for it.
func (s *Service) Notify(ctx context.Context, userID, text string) (Receipt, error) {
	var receipt Receipt
	err := s.wait(ctx, userID, func(ctx context.Context) error {
		var err error
		receipt, err = s.engine.Notify(ctx, userID, text)
		return err
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// Forget deletes the user's data once in-flight work for them has finished.
func (s *Service) Forget(ctx context.Context, userID string) error {
	return s.wait(ctx, userID, func(ctx context.Context) error {
		return s.engine.Forget(ctx, userID)
	})
}

// Snapshot reads the user's state without queueing.
func (s *Service) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	return s.engine.Snapshot(ctx, userID)
}

// Close stops accepting work and drains the queue.
func (s *Service) Close(ctx context.Context) error {
	return s.queue.Close(ctx)
}

// wait submits job and blocks for its result or ctx. A job abandoned by ctx
// still runs to completion in its lane.
func (s *Service) wait(ctx context.Context, userID string, job Job) error {
	done := s.queue.Submit(context.WithoutCancel(ctx), userID, job)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

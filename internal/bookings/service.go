package bookings

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PrathamRathore123/Whatsapp-Bot/internal/backend"
	"github.com/PrathamRathore123/Whatsapp-Bot/internal/conversation"
	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

var bookingsTracer = otel.Tracer("whatsapp-bot.internal.bookings")

// Service records finalized bookings.
type Service struct {
	repo   *Repository
	logger *logging.Logger
}

// NewService constructs a bookings service.
func NewService(repo *Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

var _ conversation.BookingRecorder = (*Service)(nil)

// RecordFinalized persists a booking once the backend accepted it.
func (s *Service) RecordFinalized(ctx context.Context, rec backend.BookingRecord) error {
	ctx, span := bookingsTracer.Start(ctx, "bookings.record_finalized")
	defer span.End()
	span.SetAttributes(attribute.String("booking.package", rec.Package))

	id, err := s.repo.Insert(ctx, rec)
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("booking recorded", "user_id", logging.RedactPhone(rec.CustomerPhone), "booking_id", id)
	return nil
}

// ListByPhone returns stored bookings for a customer.
func (s *Service) ListByPhone(ctx context.Context, phone string, limit int) ([]Booking, error) {
	if phone == "" {
		return nil, errors.New("bookings: phone required")
	}
	return s.repo.ListByPhone(ctx, phone, limit)
}

package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Astemirdum/court-booking/pkg/events"
	"github.com/Astemirdum/court-booking/stats/internal/errs"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type record func(ctx context.Context, event events.ReservationEvent) error

type Consumer struct {
	recordHandler record
	log           *zap.Logger
}

func NewConsumer(record record, log *zap.Logger) *Consumer {
	return &Consumer{
		recordHandler: record,
		log:           log.Named("consumer"),
	}
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks a message only once it is stored or can never be stored.
// A message that keeps failing stops the claim unmarked, so nothing after it is committed.
func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var event events.ReservationEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				consumer.log.Error("json.Unmarshal", zap.Error(err), zap.Int64("offset", message.Offset))
				session.MarkMessage(message, "")
				continue
			}

			if err := consumer.record(session.Context(), event); err != nil {
				if errors.Is(err, errs.ErrInvalidEvent) {
					consumer.log.Error("consumer.recordHandler", zap.Error(err), zap.String("id", event.ID))
					session.MarkMessage(message, "")
					continue
				}
				// ending the claim closes the session; the partition resumes at this offset
				return errors.Wrapf(err, "record %s at offset %d", event.ID, message.Offset)
			}

			consumer.log.Debug("Message claimed:",
				zap.String("type", string(event.Type)),
				zap.Time("timestamp", message.Timestamp),
				zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

const (
	recordAttempts = 3
	recordBackoff  = 100 * time.Millisecond
)

func (consumer *Consumer) record(ctx context.Context, event events.ReservationEvent) error {
	for attempt := 1; ; attempt++ {
		err := consumer.recordHandler(ctx, event)
		if err == nil || errors.Is(err, errs.ErrInvalidEvent) || attempt == recordAttempts {
			return err
		}
		consumer.log.Warn("consumer.recordHandler retry",
			zap.Error(err), zap.String("id", event.ID), zap.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * recordBackoff):
		}
	}
}

package handler_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/court-booking/pkg/events"
	"github.com/Astemirdum/court-booking/stats/internal/errs"
	"github.com/Astemirdum/court-booking/stats/internal/handler"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func message(t *testing.T, offset int64, v any) *sarama.ConsumerMessage {
	t.Helper()
	var value []byte
	switch v := v.(type) {
	case []byte:
		value = v
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		value = b
	}
	return &sarama.ConsumerMessage{Topic: "reservation-events", Offset: offset, Value: value, Timestamp: time.Now()}
}

func TestConsumer_ConsumeClaim(t *testing.T) {
	t.Parallel()
	var recorded []string
	record := func(_ context.Context, e events.ReservationEvent) error {
		if e.ID == "bad" {
			return errors.Wrap(errs.ErrInvalidEvent, "type")
		}
		recorded = append(recorded, e.ID)
		return nil
	}
	consumer := handler.NewConsumer(record, zap.NewNop())

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 4)}
	claim.messages <- message(t, 1, events.ReservationEvent{ID: "e-1", Type: events.ReservationCreated, FacilityID: "court-1"})
	claim.messages <- message(t, 2, []byte("{not json"))
	claim.messages <- message(t, 3, events.ReservationEvent{ID: "bad"})
	claim.messages <- message(t, 4, events.ReservationEvent{ID: "e-2", Type: events.ReservationCancelled, FacilityID: "court-1"})
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, consumer.Setup(session))
	require.NoError(t, consumer.ConsumeClaim(session, claim))
	require.NoError(t, consumer.Cleanup(session))

	require.Equal(t, []string{"e-1", "e-2"}, recorded)
	require.Equal(t, []int64{1, 2, 3, 4}, session.marked)
}

func TestConsumer_StoreFailureStopsClaim(t *testing.T) {
	t.Parallel()
	errDown := errors.New("db down")
	var calls []string
	record := func(_ context.Context, e events.ReservationEvent) error {
		calls = append(calls, e.ID)
		if e.ID == "down" {
			return errDown
		}
		return nil
	}
	consumer := handler.NewConsumer(record, zap.NewNop())

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 3)}
	claim.messages <- message(t, 1, events.ReservationEvent{ID: "e-1", Type: events.ReservationCreated, FacilityID: "court-1"})
	claim.messages <- message(t, 2, events.ReservationEvent{ID: "down", Type: events.ReservationConfirmed, FacilityID: "court-1"})
	claim.messages <- message(t, 3, events.ReservationEvent{ID: "e-3", Type: events.ReservationCancelled, FacilityID: "court-1"})
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	err := consumer.ConsumeClaim(session, claim)
	require.ErrorIs(t, err, errDown)

	require.Equal(t, []string{"e-1", "down", "down", "down"}, calls)
	require.Equal(t, []int64{1}, session.marked)
}

func TestConsumer_RetriesTransientFailure(t *testing.T) {
	t.Parallel()
	failures := 1
	var recorded []string
	record := func(_ context.Context, e events.ReservationEvent) error {
		if failures > 0 {
			failures--
			return errors.New("connection reset")
		}
		recorded = append(recorded, e.ID)
		return nil
	}
	consumer := handler.NewConsumer(record, zap.NewNop())

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- message(t, 1, events.ReservationEvent{ID: "e-1", Type: events.ReservationCreated, FacilityID: "court-1"})
	claim.messages <- message(t, 2, events.ReservationEvent{ID: "e-2", Type: events.ReservationConfirmed, FacilityID: "court-1"})
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	require.NoError(t, consumer.ConsumeClaim(session, claim))
	require.Equal(t, []string{"e-1", "e-2"}, recorded)
	require.Equal(t, []int64{1, 2}, session.marked)
}

func TestConsumer_StopsOnSessionDone(t *testing.T) {
	t.Parallel()
	consumer := handler.NewConsumer(func(context.Context, events.ReservationEvent) error { return nil }, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage)}
	require.NoError(t, consumer.ConsumeClaim(&fakeSession{ctx: ctx}, claim))
}

package kafka

import (
	"context"
	"encoding/json"
	"time"

	cb "github.com/Astemirdum/court-booking/pkg/circuit_breaker"
	"github.com/Astemirdum/court-booking/pkg/events"
	"github.com/IBM/sarama"
)

type publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       cb.CircuitBreaker
}

// NewPublisher sends events keyed by facility, so one facility's events stay ordered.
func NewPublisher(producer sarama.SyncProducer, topic string) events.Publisher {
	return &publisher{
		producer: producer,
		topic:    topic,
		cb:       cb.New(20, 30*time.Second, 0.5, 3),
	}
}

func (p *publisher) Publish(_ context.Context, event events.ReservationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.FacilityID),
		Value:     sarama.ByteEncoder(data),
		Timestamp: event.Timestamp,
	}
	return p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
}

func (p *publisher) Close() error {
	return p.producer.Close()
}

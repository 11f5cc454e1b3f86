package events

import (
	"context"
	"time"
)

type Type string

const (
	ReservationCreated   Type = "reservation.created"
	ReservationConfirmed Type = "reservation.confirmed"
	ReservationRejected  Type = "reservation.rejected"
	ReservationCancelled Type = "reservation.cancelled"
)

// ReservationEvent is emitted after every successful reservation state change.
type ReservationEvent struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	ReservationID string    `json:"reservationId"`
	FacilityID    string    `json:"facilityId"`
	UserID        string    `json:"userId"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Status        string    `json:"status"`
	ActorID       string    `json:"actorId"`
	Timestamp     time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
	Close() error
}

type noop struct{}

// NewNoop returns a Publisher that drops every event.
func NewNoop() Publisher { return noop{} }

func (noop) Publish(context.Context, ReservationEvent) error { return nil }
func (noop) Close() error                                    { return nil }

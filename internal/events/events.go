// Package events publishes appointment domain events to a broker after the
// change they describe has been committed.
package events

//go:generate mockgen -source=events.go -destination=mocks/publisher.go -package=mocks Publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"consult-broker/internal/model"
)

type Type string

const (
	AppointmentCreated Type = "appointment.created"
	StatusChanged      Type = "appointment.status_changed"
	MessageSent        Type = "message.sent"
)

type Event struct {
	Type           Type         `json:"type"`
	AppointmentID  int64        `json:"appointment_id"`
	UserID         int64        `json:"user_id"`
	WorkerID       int64        `json:"worker_id"`
	Status         model.Status `json:"status"`
	PreviousStatus model.Status `json:"previous_status,omitempty"`
	MessageID      int64        `json:"message_id,omitempty"`
	Actor          string       `json:"actor,omitempty"`
	At             time.Time    `json:"at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

func encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// Log writes events to the logger; the default when no broker is configured.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log { return &Log{log: log} }

func (l *Log) Publish(ctx context.Context, e Event) error {
	l.log.InfoContext(ctx, "event",
		"type", e.Type, "appointment_id", e.AppointmentID, "status", e.Status, "message_id", e.MessageID)
	return nil
}

func (l *Log) Close() error { return nil }

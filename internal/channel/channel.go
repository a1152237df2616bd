// Package channel is the per-appointment chat log. Messages can be read or
// written only while the appointment is accepted or in consultation, and
// only by its user or worker.
package channel

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"consult-broker/internal/apperr"
	"consult-broker/internal/guard"
	"consult-broker/internal/model"
	"consult-broker/internal/store"
)

const MaxBodyLen = 4000

type Channel struct {
	appointments store.AppointmentStore
	messages     store.MessageStore
	now          func() time.Time
}

func New(appointments store.AppointmentStore, messages store.MessageStore) *Channel {
	return &Channel{appointments: appointments, messages: messages, now: time.Now}
}

func (c *Channel) WithClock(now func() time.Time) *Channel {
	c.now = now
	return c
}

func gate(a *model.Appointment) error {
	if !a.Status.ChatOpen() {
		return apperr.ChatUnavailable(a.Status)
	}
	return nil
}

// open runs the checks shared by Send and List, in order: existence,
// status gate, guard.
func (c *Channel) open(ctx context.Context, appointmentID int64, role string, id int64) (*model.Appointment, error) {
	a, err := c.appointments.GetAppointment(ctx, appointmentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("appointment %d not found", appointmentID)
	}
	if err != nil {
		return nil, err
	}
	if err := gate(a); err != nil {
		return nil, err
	}
	if err := guard.Authorize(a, role, id); err != nil {
		return nil, err
	}
	return a, nil
}

// Send appends a message and returns it with the appointment as it stood
// when the message was accepted.
func (c *Channel) Send(ctx context.Context, appointmentID int64, senderRole string, senderID int64, body string) (*model.Message, *model.Appointment, error) {
	if _, err := c.open(ctx, appointmentID, senderRole, senderID); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, nil, apperr.Validation("message body required")
	}
	if utf8.RuneCountInString(body) > MaxBodyLen {
		return nil, nil, apperr.Validation("message body longer than %d characters", MaxBodyLen)
	}

	m := &model.Message{
		AppointmentID: appointmentID,
		SenderRole:    model.Role(senderRole),
		SenderID:      senderID,
		Body:          body,
		SentAt:        c.now(),
	}
	// the status may have moved since open; the store re-checks under lock
	var locked *model.Appointment
	err := c.messages.AppendMessage(ctx, m, func(a *model.Appointment) error {
		locked = a
		return gate(a)
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, apperr.NotFound("appointment %d not found", appointmentID)
	}
	if err != nil {
		return nil, nil, err
	}
	return m, locked, nil
}

// List returns the channel's messages oldest first.
func (c *Channel) List(ctx context.Context, appointmentID int64, requesterRole string, requesterID int64) ([]model.Message, error) {
	if _, err := c.open(ctx, appointmentID, requesterRole, requesterID); err != nil {
		return nil, err
	}
	msgs, err := c.messages.ListMessages(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

// Package lifecycle owns the appointment status state machine.
//
//	pending ──► accepted ──► in_consultation ──► completed
//	   │           │                │
//	   ▼           ▼                ▼
//	rejected   cancelled         cancelled
//
// rejected, completed and cancelled are terminal.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"consult-broker/internal/apperr"
	"consult-broker/internal/model"
	"consult-broker/internal/store"
)

var transitions = map[model.Status][]model.Status{
	model.StatusPending:        {model.StatusAccepted, model.StatusRejected},
	model.StatusAccepted:       {model.StatusInConsultation, model.StatusCancelled},
	model.StatusInConsultation: {model.StatusCompleted, model.StatusCancelled},
	model.StatusRejected:       nil,
	model.StatusCompleted:      nil,
	model.StatusCancelled:      nil,
}

// Allowed returns the statuses reachable from s in one step.
func Allowed(s model.Status) []model.Status {
	return append([]model.Status(nil), transitions[s]...)
}

func CanTransition(from, to model.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// WorkerCheck fails when id does not name a bookable worker.
type WorkerCheck func(ctx context.Context, id int64) error

type Engine struct {
	store       store.AppointmentStore
	now         func() time.Time
	checkWorker WorkerCheck
}

func New(st store.AppointmentStore) *Engine {
	return &Engine{store: st, now: time.Now}
}

// WithClock replaces the clock used to stamp start and end times.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithWorkerCheck makes Create verify the booked worker exists.
func (e *Engine) WithWorkerCheck(fn WorkerCheck) *Engine {
	e.checkWorker = fn
	return e
}

type CreateInput struct {
	UserID   int64
	WorkerID int64
	Name     string
	Reason   string
	Date     string
	Modality string
}

// Create books a new appointment. It is the only way an appointment comes
// into existence and always starts pending.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*model.Appointment, error) {
	a, err := in.validate()
	if err != nil {
		return nil, err
	}
	if e.checkWorker != nil {
		if err := e.checkWorker(ctx, a.WorkerID); err != nil {
			return nil, err
		}
	}
	a.Status = model.StatusPending
	if err := e.store.CreateAppointment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (in CreateInput) validate() (*model.Appointment, error) {
	if in.UserID <= 0 {
		return nil, apperr.Validation("user_id must be positive")
	}
	if in.WorkerID <= 0 {
		return nil, apperr.Validation("worker_id must be positive")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name required")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, apperr.Validation("reason required")
	}
	date, err := time.Parse(model.DateLayout, strings.TrimSpace(in.Date))
	if err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}
	modality := model.Modality(strings.ToLower(strings.TrimSpace(in.Modality)))
	if modality == "" {
		modality = model.ModalityClinic
	}
	if !modality.Valid() {
		return nil, apperr.Validation("unknown modality %q", in.Modality)
	}
	return &model.Appointment{
		UserID:   in.UserID,
		WorkerID: in.WorkerID,
		Name:     name,
		Reason:   reason,
		Date:     date,
		Modality: modality,
	}, nil
}

// Transition moves appointment id to target if the table allows it. The read
// of the current status and the write of the new one happen under the
// store's per-appointment lock.
func (e *Engine) Transition(ctx context.Context, id int64, target model.Status) (*model.Appointment, error) {
	a, _, err := e.Apply(ctx, id, target)
	return a, err
}

// Apply is Transition that also reports the status the appointment left.
func (e *Engine) Apply(ctx context.Context, id int64, target model.Status) (*model.Appointment, model.Status, error) {
	if !target.Valid() {
		return nil, "", apperr.Validation("unknown status %q", target)
	}
	var from model.Status
	a, err := e.store.UpdateAppointment(ctx, id, func(a *model.Appointment) error {
		if !CanTransition(a.Status, target) {
			return apperr.InvalidTransition(a.Status, target)
		}
		now := e.now().UTC()
		switch target {
		case model.StatusInConsultation:
			a.StartTime = &now
		case model.StatusCompleted:
			a.EndTime = &now
		}
		from = a.Status
		a.Status = target
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", apperr.NotFound("appointment %d not found", id)
	}
	if err != nil {
		return nil, "", err
	}
	return a, from, nil
}

func (e *Engine) Accept(ctx context.Context, id int64) (*model.Appointment, error) {
	return e.Transition(ctx, id, model.StatusAccepted)
}

func (e *Engine) Reject(ctx context.Context, id int64) (*model.Appointment, error) {
	return e.Transition(ctx, id, model.StatusRejected)
}

func (e *Engine) Start(ctx context.Context, id int64) (*model.Appointment, error) {
	return e.Transition(ctx, id, model.StatusInConsultation)
}

func (e *Engine) Complete(ctx context.Context, id int64) (*model.Appointment, error) {
	return e.Transition(ctx, id, model.StatusCompleted)
}

func (e *Engine) Cancel(ctx context.Context, id int64) (*model.Appointment, error) {
	return e.Transition(ctx, id, model.StatusCancelled)
}

func (e *Engine) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := e.store.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("appointment %d not found", id)
	}
	return a, err
}

// ListForUser returns the user's appointments, newest first.
func (e *Engine) ListForUser(ctx context.Context, userID int64) ([]model.Appointment, error) {
	return e.store.ListAppointmentsByUser(ctx, userID)
}

// ListForWorker returns the worker's appointments, newest first.
func (e *Engine) ListForWorker(ctx context.Context, workerID int64) ([]model.Appointment, error) {
	return e.store.ListAppointmentsByWorker(ctx, workerID)
}

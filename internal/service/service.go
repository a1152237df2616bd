// Package service is the coordinator between the transports and the
// appointment core. It resolves who is asking, runs the guard, then hands
// the request to the lifecycle engine or the message channel. It holds no
// state machine rules of its own.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"consult-broker/internal/apperr"
	"consult-broker/internal/channel"
	"consult-broker/internal/events"
	"consult-broker/internal/guard"
	"consult-broker/internal/lifecycle"
	"consult-broker/internal/metrics"
	"consult-broker/internal/model"
	"consult-broker/internal/store"
)

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Workers resolves the worker an appointment is booked with.
type Workers interface {
	Worker(ctx context.Context, id int64) (*model.Account, error)
}

type Deps struct {
	Appointments store.AppointmentStore
	Messages     store.MessageStore
	Workers      Workers
	Events       events.Publisher
	Metrics      *metrics.Metrics
	Log          *slog.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type Service struct {
	engine  *lifecycle.Engine
	guard   *guard.Guard
	channel *channel.Channel
	events  events.Publisher
	metrics *metrics.Metrics
	log     *slog.Logger
	tracer  trace.Tracer
}

func New(d Deps) *Service {
	now := d.Clock
	if now == nil {
		now = time.Now
	}
	engine := lifecycle.New(d.Appointments).WithClock(now).
		WithWorkerCheck(func(ctx context.Context, id int64) error {
			_, err := d.Workers.Worker(ctx, id)
			return err
		})
	return &Service{
		engine:  engine,
		guard:   guard.New(d.Appointments),
		channel: channel.New(d.Appointments, d.Messages).WithClock(now),
		events:  d.Events,
		metrics: d.Metrics,
		log:     d.Log,
		tracer:  otel.Tracer("consult-broker/service"),
	}
}

// CreateAppointment books on behalf of the calling user with an existing
// worker. A zero UserID is filled in from the claim; any other UserID must
// be positive and match it.
func (s *Service) CreateAppointment(ctx context.Context, c guard.Claim, in lifecycle.CreateInput) (*model.Appointment, error) {
	const op = "CreateAppointment"
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	actor, err := guard.Resolve(c)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	if actor.Role() != model.RoleUser {
		return nil, s.fail(ctx, span, op, apperr.Forbidden("only users can book appointments"))
	}
	if in.UserID == 0 {
		in.UserID = actor.ID()
	}
	if in.UserID < 0 {
		return nil, s.fail(ctx, span, op, apperr.Validation("user_id must be positive"))
	}
	if in.UserID != actor.ID() {
		return nil, s.fail(ctx, span, op, apperr.Forbidden("%s cannot book for user %d", actor, in.UserID))
	}

	a, err := s.engine.Create(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	span.SetAttributes(attribute.Int64("appointment.id", a.ID))
	s.metrics.AppointmentsCreated.Inc()
	s.log.InfoContext(ctx, "appointment created",
		"appointment_id", a.ID, "user_id", a.UserID, "worker_id", a.WorkerID, "modality", a.Modality)
	s.publish(ctx, events.Event{
		Type: events.AppointmentCreated, AppointmentID: a.ID, UserID: a.UserID, WorkerID: a.WorkerID,
		Status: a.Status, Actor: actor.String(), At: a.CreatedAt,
	})
	return a, nil
}

func (s *Service) RespondToAppointment(ctx context.Context, c guard.Claim, id int64, d Decision) (*model.Appointment, error) {
	switch d {
	case DecisionAccept:
		return s.transition(ctx, "RespondToAppointment", c, id, model.StatusAccepted)
	case DecisionReject:
		return s.transition(ctx, "RespondToAppointment", c, id, model.StatusRejected)
	}
	return nil, s.reject("RespondToAppointment", apperr.Validation("decision must be accept or reject"))
}

func (s *Service) StartConsultation(ctx context.Context, c guard.Claim, id int64) (*model.Appointment, error) {
	return s.transition(ctx, "StartConsultation", c, id, model.StatusInConsultation)
}

func (s *Service) CompleteAppointment(ctx context.Context, c guard.Claim, id int64) (*model.Appointment, error) {
	return s.transition(ctx, "CompleteAppointment", c, id, model.StatusCompleted)
}

func (s *Service) CancelAppointment(ctx context.Context, c guard.Claim, id int64) (*model.Appointment, error) {
	return s.transition(ctx, "CancelAppointment", c, id, model.StatusCancelled)
}

func (s *Service) transition(ctx context.Context, op string, c guard.Claim, id int64, target model.Status) (*model.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Int64("appointment.id", id),
		attribute.String("appointment.target_status", string(target)),
	))
	defer span.End()

	if _, err := s.guard.Load(ctx, id, c); err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	a, from, err := s.engine.Apply(ctx, id, target)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	s.metrics.Transitions.WithLabelValues(string(from), string(target)).Inc()
	s.log.InfoContext(ctx, "appointment status changed",
		"appointment_id", id, "from", from, "to", target, "actor_role", c.Role, "actor_id", c.ID)
	s.publish(ctx, events.Event{
		Type: events.StatusChanged, AppointmentID: a.ID, UserID: a.UserID, WorkerID: a.WorkerID,
		Status: a.Status, PreviousStatus: from, Actor: c.Role, At: a.UpdatedAt,
	})
	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, c guard.Claim, id int64) (*model.Appointment, error) {
	const op = "GetAppointment"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("appointment.id", id)))
	defer span.End()

	a, err := s.guard.Load(ctx, id, c)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	return a, nil
}

// ListAppointmentsForUser needs no guard: the id is the caller's own.
func (s *Service) ListAppointmentsForUser(ctx context.Context, userID int64) ([]model.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "ListAppointmentsForUser")
	defer span.End()
	out, err := s.engine.ListForUser(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, span, "ListAppointmentsForUser", err)
	}
	return out, nil
}

func (s *Service) ListAppointmentsForWorker(ctx context.Context, workerID int64) ([]model.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "ListAppointmentsForWorker")
	defer span.End()
	out, err := s.engine.ListForWorker(ctx, workerID)
	if err != nil {
		return nil, s.fail(ctx, span, "ListAppointmentsForWorker", err)
	}
	return out, nil
}

// ListAppointmentsFor lists the appointments of whichever side the actor is.
func (s *Service) ListAppointmentsFor(ctx context.Context, a model.Actor) ([]model.Appointment, error) {
	switch a.Role() {
	case model.RoleUser:
		return s.ListAppointmentsForUser(ctx, a.ID())
	case model.RoleWorker:
		return s.ListAppointmentsForWorker(ctx, a.ID())
	}
	return nil, apperr.BadRequest("unresolved actor")
}

func (s *Service) SendMessage(ctx context.Context, c guard.Claim, appointmentID int64, body string) (*model.Message, error) {
	const op = "SendMessage"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("appointment.id", appointmentID)))
	defer span.End()

	m, a, err := s.channel.Send(ctx, appointmentID, c.Role, c.ID, body)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	s.metrics.MessagesSent.Inc()
	s.publish(ctx, events.Event{
		Type: events.MessageSent, AppointmentID: appointmentID, UserID: a.UserID, WorkerID: a.WorkerID,
		Status: a.Status, MessageID: m.ID, Actor: string(m.SenderRole), At: m.SentAt,
	})
	return m, nil
}

func (s *Service) ListMessages(ctx context.Context, c guard.Claim, appointmentID int64) ([]model.Message, error) {
	const op = "ListMessages"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("appointment.id", appointmentID)))
	defer span.End()

	msgs, err := s.channel.List(ctx, appointmentID, c.Role, c.ID)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	return msgs, nil
}

// fail records err on the span and in metrics and returns it unchanged.
func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if apperr.KindOf(err) == "" {
		s.log.ErrorContext(ctx, "operation failed", "op", op, "err", err)
		return err
	}
	return s.reject(op, err)
}

func (s *Service) reject(op string, err error) error {
	s.metrics.Rejections.WithLabelValues(op, string(apperr.KindOf(err))).Inc()
	return err
}

// publish never fails the caller: by the time it runs the change is committed.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.metrics.PublishFailures.WithLabelValues(string(e.Type)).Inc()
		s.log.WarnContext(ctx, "event publish failed", "type", e.Type, "appointment_id", e.AppointmentID, "err", err)
	}
}

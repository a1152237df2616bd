package handler

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/guard"
	"consult-broker/internal/lifecycle"
	"consult-broker/internal/model"
	"consult-broker/internal/service"
)

func (h *Handler) CreateAppointment(ctx context.Context, req *brokerv1.CreateAppointmentRequest) (*brokerv1.AppointmentResponse, error) {
	_, claim, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	a, err := h.svc.CreateAppointment(ctx, claim, lifecycle.CreateInput{
		UserID:   req.UserId,
		WorkerID: req.WorkerId,
		Name:     req.Name,
		Reason:   req.Reason,
		Date:     req.Date,
		Modality: req.Modality,
	})
	return h.appointment(ctx, a, err)
}

func (h *Handler) RespondToAppointment(ctx context.Context, req *brokerv1.RespondRequest) (*brokerv1.AppointmentResponse, error) {
	_, claim, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	a, err := h.svc.RespondToAppointment(ctx, claim, req.Id, service.Decision(req.Decision))
	return h.appointment(ctx, a, err)
}

func (h *Handler) StartConsultation(ctx context.Context, req *brokerv1.AppointmentRef) (*brokerv1.AppointmentResponse, error) {
	return h.byRef(ctx, req, h.svc.StartConsultation)
}

func (h *Handler) CompleteAppointment(ctx context.Context, req *brokerv1.AppointmentRef) (*brokerv1.AppointmentResponse, error) {
	return h.byRef(ctx, req, h.svc.CompleteAppointment)
}

func (h *Handler) CancelAppointment(ctx context.Context, req *brokerv1.AppointmentRef) (*brokerv1.AppointmentResponse, error) {
	return h.byRef(ctx, req, h.svc.CancelAppointment)
}

func (h *Handler) GetAppointment(ctx context.Context, req *brokerv1.AppointmentRef) (*brokerv1.AppointmentResponse, error) {
	return h.byRef(ctx, req, h.svc.GetAppointment)
}

func (h *Handler) byRef(ctx context.Context, req *brokerv1.AppointmentRef,
	op func(context.Context, guard.Claim, int64) (*model.Appointment, error)) (*brokerv1.AppointmentResponse, error) {
	_, claim, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	a, err := op(ctx, claim, req.Id)
	return h.appointment(ctx, a, err)
}

func (h *Handler) appointment(ctx context.Context, a *model.Appointment, err error) (*brokerv1.AppointmentResponse, error) {
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &brokerv1.AppointmentResponse{Appointment: toProto(a)}, nil
}

// ListAppointments returns the caller's own appointments, newest first.
func (h *Handler) ListAppointments(ctx context.Context, _ *brokerv1.ListAppointmentsRequest) (*brokerv1.ListAppointmentsResponse, error) {
	actor, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	apts, err := h.svc.ListAppointmentsFor(ctx, actor)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	out := make([]*brokerv1.Appointment, len(apts))
	for i := range apts {
		out[i] = toProto(&apts[i])
	}
	return &brokerv1.ListAppointmentsResponse{Appointments: out}, nil
}

func toProto(a *model.Appointment) *brokerv1.Appointment {
	p := &brokerv1.Appointment{
		Id:        a.ID,
		UserId:    a.UserID,
		WorkerId:  a.WorkerID,
		Name:      a.Name,
		Reason:    a.Reason,
		Date:      a.Date.Format(model.DateLayout),
		Modality:  string(a.Modality),
		Status:    string(a.Status),
		StartTime: optionalTime(a.StartTime),
		EndTime:   optionalTime(a.EndTime),
	}
	if !a.CreatedAt.IsZero() {
		p.CreatedAt = timestamppb.New(a.CreatedAt)
	}
	if !a.UpdatedAt.IsZero() {
		p.UpdatedAt = timestamppb.New(a.UpdatedAt)
	}
	return p
}

func optionalTime(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

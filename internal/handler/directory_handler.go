package handler

import (
	"context"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/model"
)

func (h *Handler) ListWorkers(ctx context.Context, req *brokerv1.ListWorkersRequest) (*brokerv1.ListWorkersResponse, error) {
	if _, _, err := caller(ctx); err != nil {
		return nil, err
	}
	workers, err := h.dir.ListWorkers(ctx, model.WorkerFilter{Specialization: req.Specialization, Query: req.Query})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	resp := &brokerv1.ListWorkersResponse{Workers: make([]*brokerv1.Worker, 0, len(workers))}
	for i := range workers {
		resp.Workers = append(resp.Workers, workerToProto(&workers[i]))
	}
	return resp, nil
}

func (h *Handler) ListSpecializations(ctx context.Context, _ *brokerv1.ListSpecializationsRequest) (*brokerv1.ListSpecializationsResponse, error) {
	if _, _, err := caller(ctx); err != nil {
		return nil, err
	}
	specs, err := h.dir.Specializations(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &brokerv1.ListSpecializationsResponse{Specializations: specs}, nil
}

func (h *Handler) SetAvailability(ctx context.Context, req *brokerv1.Slot) (*brokerv1.Slot, error) {
	actor, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slot, err := h.dir.SetAvailability(ctx, actor, req.Date, req.TimeSlot)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return slotToProto(slot), nil
}

func (h *Handler) RemoveAvailability(ctx context.Context, req *brokerv1.Slot) (*brokerv1.RemoveAvailabilityResponse, error) {
	actor, _, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.dir.RemoveAvailability(ctx, actor, req.Date, req.TimeSlot); err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &brokerv1.RemoveAvailabilityResponse{}, nil
}

func (h *Handler) ListAvailability(ctx context.Context, req *brokerv1.ListAvailabilityRequest) (*brokerv1.ListAvailabilityResponse, error) {
	if _, _, err := caller(ctx); err != nil {
		return nil, err
	}
	slots, err := h.dir.Availability(ctx, req.WorkerId, req.Date)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	resp := &brokerv1.ListAvailabilityResponse{Slots: make([]*brokerv1.Slot, 0, len(slots))}
	for i := range slots {
		resp.Slots = append(resp.Slots, slotToProto(&slots[i]))
	}
	return resp, nil
}

func workerToProto(a *model.Account) *brokerv1.Worker {
	return &brokerv1.Worker{
		Id:             a.ID,
		Name:           a.Name,
		Specialization: a.Profile.Specialization,
		Experience:     int64(a.Profile.Experience),
		ClinicLocation: a.Profile.ClinicLocation,
		Rating:         a.Profile.Rating,
	}
}

func slotToProto(s *model.Slot) *brokerv1.Slot {
	return &brokerv1.Slot{WorkerId: s.WorkerID, Date: s.Date.Format(model.DateLayout), TimeSlot: s.TimeSlot}
}

package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/timestamppb"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/model"
)

func (h *Handler) SendMessage(ctx context.Context, req *brokerv1.SendMessageRequest) (*brokerv1.SendMessageResponse, error) {
	_, claim, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	m, err := h.svc.SendMessage(ctx, claim, req.AppointmentId, req.Body)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &brokerv1.SendMessageResponse{Message: messageToProto(m)}, nil
}

func (h *Handler) ListMessages(ctx context.Context, req *brokerv1.ListMessagesRequest) (*brokerv1.ListMessagesResponse, error) {
	_, claim, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	msgs, err := h.svc.ListMessages(ctx, claim, req.AppointmentId)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	out := make([]*brokerv1.ChatMessage, len(msgs))
	for i := range msgs {
		out[i] = messageToProto(&msgs[i])
	}
	return &brokerv1.ListMessagesResponse{Messages: out}, nil
}

func messageToProto(m *model.Message) *brokerv1.ChatMessage {
	return &brokerv1.ChatMessage{
		Id:            m.ID,
		AppointmentId: m.AppointmentID,
		SenderRole:    string(m.SenderRole),
		SenderId:      m.SenderID,
		Body:          m.Body,
		SentAt:        timestamppb.New(m.SentAt),
	}
}

package handler

import (
	"context"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/identity"
)

func (h *Handler) Register(ctx context.Context, req *brokerv1.RegisterRequest) (*brokerv1.AuthResponse, error) {
	sess, err := h.ident.Register(ctx, identity.RegisterInput{
		Role: req.Role, Name: req.Name, Email: req.Email, Password: req.Password,
		Specialization: req.Specialization,
		Experience:     int(req.Experience),
		ClinicLocation: req.ClinicLocation,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toAuthResponse(sess), nil
}

func (h *Handler) Login(ctx context.Context, req *brokerv1.LoginRequest) (*brokerv1.AuthResponse, error) {
	sess, err := h.ident.Login(ctx, req.Role, req.Email, req.Password)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toAuthResponse(sess), nil
}

func (h *Handler) Refresh(ctx context.Context, req *brokerv1.RefreshRequest) (*brokerv1.AuthResponse, error) {
	sess, err := h.ident.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return toAuthResponse(sess), nil
}

func toAuthResponse(s *identity.Session) *brokerv1.AuthResponse {
	return &brokerv1.AuthResponse{
		AccountId:    s.Account.ID,
		Role:         string(s.Account.Role),
		Name:         s.Account.Name,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

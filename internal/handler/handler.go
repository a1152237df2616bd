package handler

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/apperr"
	"consult-broker/internal/directory"
	"consult-broker/internal/guard"
	"consult-broker/internal/identity"
	"consult-broker/internal/middleware"
	"consult-broker/internal/model"
	"consult-broker/internal/service"
)

type Handler struct {
	brokerv1.UnimplementedBrokerServiceServer
	svc   *service.Service
	ident *identity.Service
	dir   *directory.Directory
	log   *slog.Logger
}

func New(svc *service.Service, ident *identity.Service, dir *directory.Directory, log *slog.Logger) *Handler {
	return &Handler{svc: svc, ident: ident, dir: dir, log: log}
}

// caller returns the actor that the auth interceptor resolved.
func caller(ctx context.Context) (model.Actor, guard.Claim, error) {
	a, ok := middleware.ActorFrom(ctx)
	if !ok {
		return model.Actor{}, guard.Claim{}, status.Error(codes.Unauthenticated, "no actor")
	}
	return a, guard.ClaimOf(a), nil
}

// toStatus maps core and identity errors onto gRPC codes. Anything unknown
// is logged and hidden behind Internal.
func (h *Handler) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrBadRefreshToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, identity.ErrRegistrationFailed):
		return status.Error(codes.AlreadyExists, err.Error())
	}

	var ae *apperr.Error
	if !errors.As(err, &ae) {
		h.log.ErrorContext(ctx, "internal error", "err", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(Code(ae.Kind), ae.Message)
}

// Code is the gRPC code for an error kind.
func Code(k apperr.Kind) codes.Code {
	switch k {
	case apperr.KindNotFound:
		return codes.NotFound
	case apperr.KindForbidden:
		return codes.PermissionDenied
	case apperr.KindValidation, apperr.KindBadRequest:
		return codes.InvalidArgument
	case apperr.KindInvalidTransition, apperr.KindChatUnavailable:
		return codes.FailedPrecondition
	}
	return codes.Internal
}

package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/auth"
	"consult-broker/internal/model"
)

type ctxKey string

const actorKey ctxKey = "actor"

// skip auth for these
var open = map[string]bool{
	brokerv1.FullMethod("Register"): true,
	brokerv1.FullMethod("Login"):    true,
	brokerv1.FullMethod("Refresh"):  true,
}

// WithActor stores the resolved caller in ctx.
func WithActor(ctx context.Context, a model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFrom returns the caller stored by Auth or WithActor.
func ActorFrom(ctx context.Context) (model.Actor, bool) {
	a, ok := ctx.Value(actorKey).(model.Actor)
	return a, ok && a.Valid()
}

// BearerToken strips the "Bearer " prefix; it returns "" if there is none.
func BearerToken(header string) string {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw)
}

func Auth(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		// token from Authorization: Bearer <jwt>
		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = BearerToken(vals[0])
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		actor, err := auth.ActorFromToken(raw, secret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		return next(WithActor(ctx, actor), req)
	}
}

package middleware

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	brokerv1 "consult-broker/api/brokerv1"
)

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter keeps one token bucket per client key (usually the remote IP).
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
	}
}

// Cleanup drops clients idle for longer than idle, every interval, until ctx
// is done.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.sweep(time.Now().Add(-idle))
		}
	}
}

func (rl *RateLimiter) sweep(before time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if c.seen.Before(before) {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if c, ok := rl.clients[key]; ok {
		c.seen = time.Now()
		return c.lim
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.clients[key] = &client{lim: l, seen: time.Now()}
	return l
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

// methods that should be rate limited
var limited = map[string]bool{
	brokerv1.FullMethod("Register"):    true,
	brokerv1.FullMethod("Login"):       true,
	brokerv1.FullMethod("Refresh"):     true,
	brokerv1.FullMethod("SendMessage"): true,
}

// ClientAddrHeader carries the browser's address on calls relayed by the
// in-process gRPC-Web bridge.
const ClientAddrHeader = "x-client-addr"

func RateLimit(rl *RateLimiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if !limited[info.FullMethod] {
			return next(ctx, req)
		}
		if !rl.Allow(clientKey(ctx)) {
			return nil, status.Error(codes.ResourceExhausted, "too many requests")
		}
		return next(ctx, req)
	}
}

// clientKey is the peer host. ClientAddrHeader is only honoured from a
// loopback peer, where the bridge runs; anyone else could forge it.
func clientKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	host := hostOnly(p.Addr.String())
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		return host
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(ClientAddrHeader); len(vals) > 0 && vals[0] != "" {
			return vals[0]
		}
	}
	return host
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

package grpcweb

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/directory"
	"consult-broker/internal/events"
	"consult-broker/internal/handler"
	"consult-broker/internal/identity"
	"consult-broker/internal/metrics"
	"consult-broker/internal/middleware"
	"consult-broker/internal/service"
	"consult-broker/internal/store"
)

const secret = "grpcweb-secret"

func newBridge(t *testing.T) http.Handler {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	return startBridge(t, lis, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}), middleware.Auth(secret))
}

// newLimitedBridge serves over real loopback TCP so the limiter sees the
// same peer address it does in production.
func newLimitedBridge(t *testing.T, rl *middleware.RateLimiter) http.Handler {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return startBridge(t, lis, nil, middleware.RateLimit(rl), middleware.Auth(secret))
}

func startBridge(t *testing.T, lis net.Listener, dialer grpc.DialOption, ics ...grpc.UnaryServerInterceptor) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()
	dir := directory.New(st, st, st, log)
	svc := service.New(service.Deps{
		Appointments: st, Messages: st, Workers: dir,
		Events:  events.NewLog(log),
		Metrics: metrics.New(prometheus.NewRegistry()),
		Log:     log,
	})
	ident := identity.New(st, st, identity.Config{Secret: secret}, log)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(ics...))
	brokerv1.RegisterBrokerServiceServer(srv, handler.New(svc, ident, dir, log))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	target := lis.Addr().String()
	if dialer != nil {
		opts = append(opts, dialer)
		target = "passthrough:///bufnet"
	}
	conn, err := grpc.NewClient(target, opts...)
	require.NoError(t, err)
	b := NewWithConn(conn, log)
	t.Cleanup(func() { b.Close() })
	return b.Handler()
}

type frames struct {
	data    []byte
	trailer string
}

func call(t *testing.T, h http.Handler, method, token string, msg interface{ Marshal() ([]byte, error) }) frames {
	t.Helper()
	return callFrom(t, h, "", method, token, msg)
}

// callFrom sends from remoteAddr; empty keeps the httptest default.
func callFrom(t *testing.T, h http.Handler, remoteAddr, method, token string, msg interface{ Marshal() ([]byte, error) }) frames {
	t.Helper()
	payload, err := msg.Marshal()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, brokerv1.FullMethod(method), bytes.NewReader(frame(0x00, payload)))
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out frames
	body := rec.Body.Bytes()
	for len(body) >= 5 {
		n := binary.BigEndian.Uint32(body[1:5])
		chunk := body[5 : 5+n]
		if body[0]&0x80 != 0 {
			out.trailer = string(chunk)
		} else {
			out.data = chunk
		}
		body = body[5+n:]
	}
	return out
}

func TestBridgeRoundTrip(t *testing.T) {
	h := newBridge(t)

	f := call(t, h, "Register", "", &brokerv1.RegisterRequest{
		Role: "user", Name: "Pat", Email: "pat@web.test", Password: "testpass123",
	})
	require.Contains(t, f.trailer, "grpc-status:0")
	var auth brokerv1.AuthResponse
	require.NoError(t, auth.Unmarshal(f.data))
	assert.NotEmpty(t, auth.AccessToken)
	assert.Equal(t, "user", auth.Role)

	f = call(t, h, "ListAppointments", auth.AccessToken, &brokerv1.ListAppointmentsRequest{})
	assert.Contains(t, f.trailer, "grpc-status:0")
}

func TestBridgeForwardsErrors(t *testing.T) {
	h := newBridge(t)
	f := call(t, h, "ListAppointments", "", &brokerv1.ListAppointmentsRequest{})
	assert.Contains(t, f.trailer, "grpc-status:16")
	assert.Nil(t, f.data)
}

func TestBridgeRejectsNonGRPCWeb(t *testing.T) {
	h := newBridge(t)

	req := httptest.NewRequest(http.MethodGet, brokerv1.FullMethod("Login"), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodPost, brokerv1.FullMethod("Login"), strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodOptions, brokerv1.FullMethod("Login"), nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBridgeRateLimitsPerBrowser(t *testing.T) {
	h := newLimitedBridge(t, middleware.NewRateLimiter(0.001, 1))
	login := &brokerv1.LoginRequest{Role: "user", Email: "nobody@web.test", Password: "testpass123"}

	f := callFrom(t, h, "203.0.113.1:4100", "Login", "", login)
	assert.Contains(t, f.trailer, "grpc-status:16")
	f = callFrom(t, h, "203.0.113.2:4100", "Login", "", login)
	assert.Contains(t, f.trailer, "grpc-status:16", "a second browser has its own bucket")
	f = callFrom(t, h, "203.0.113.1:4200", "Login", "", login)
	assert.Contains(t, f.trailer, "grpc-status:8", "the first browser is out of tokens")
}

func TestErrorMessageIsPercentEncoded(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, codes.InvalidArgument, "bad\r\ngrpc-status:0 100% sure ✓")

	body := rec.Body.Bytes()
	require.Greater(t, len(body), 5)
	trailer := string(body[5:])
	assert.Equal(t, "grpc-status:3\r\ngrpc-message:bad%0D%0Agrpc-status:0 100%25 sure %E2%9C%93\r\n", trailer)
	assert.Equal(t, 2, strings.Count(trailer, "\r\n"), "the message cannot inject trailer lines")
}

func TestEncodeMessage(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		"plain message":        "plain message",
		"50%":                  "50%25",
		"tab\there":            "tab%09here",
		"caf\u00e9":            "caf%C3%A9",
		"~ and space stay put": "~ and space stay put",
	}
	for in, want := range tests {
		assert.Equal(t, want, encodeMessage(in), in)
	}
}

func TestUnframe(t *testing.T) {
	_, err := unframe([]byte{0, 0, 0})
	assert.Error(t, err)
	_, err = unframe([]byte{0, 0, 0, 0, 9, 1})
	assert.Error(t, err)
	_, err = unframe(frame(0x80, []byte("x")))
	assert.Error(t, err)
	got, err := unframe(frame(0x00, []byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

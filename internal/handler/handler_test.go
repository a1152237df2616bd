package handler_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/apperr"
	"consult-broker/internal/directory"
	"consult-broker/internal/events"
	"consult-broker/internal/handler"
	"consult-broker/internal/identity"
	"consult-broker/internal/metrics"
	"consult-broker/internal/middleware"
	"consult-broker/internal/service"
	"consult-broker/internal/store"
)

const secret = "handler-test-secret"

// setup runs the full interceptor chain over an in-memory listener.
func setup(t *testing.T) *brokerv1.BrokerServiceClient {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()
	dir := directory.New(st, st, st, log)
	svc := service.New(service.Deps{
		Appointments: st,
		Messages:     st,
		Workers:      dir,
		Events:       events.NewLog(log),
		Metrics:      metrics.New(prometheus.NewRegistry()),
		Log:          log,
	})
	ident := identity.New(st, st, identity.Config{Secret: secret}, log)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.Logging(log),
		middleware.Auth(secret),
	))
	brokerv1.RegisterBrokerServiceServer(srv, handler.New(svc, ident, dir, log))

	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return brokerv1.NewBrokerServiceClient(conn)
}

type party struct {
	id  int64
	ctx context.Context
}

func register(t *testing.T, c *brokerv1.BrokerServiceClient, role string) party {
	t.Helper()
	rr, err := c.Register(context.Background(), &brokerv1.RegisterRequest{
		Role:     role,
		Name:     "Test " + role,
		Email:    fmt.Sprintf("%s-%s@test.com", role, uuid.New().String()[:8]),
		Password: "testpass123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", role, err)
	}
	md := metadata.Pairs("authorization", "Bearer "+rr.AccessToken)
	return party{id: rr.AccountId, ctx: metadata.NewOutgoingContext(context.Background(), md)}
}

func book(t *testing.T, c *brokerv1.BrokerServiceClient, u, w party) *brokerv1.Appointment {
	t.Helper()
	resp, err := c.CreateAppointment(u.ctx, &brokerv1.CreateAppointmentRequest{
		WorkerId: w.id, Name: "Asha", Reason: "fever", Date: "2026-03-10",
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return resp.Appointment
}

func code(err error) codes.Code {
	s, _ := status.FromError(err)
	return s.Code()
}

// ----- auth tests -----

func TestRegisterValidation(t *testing.T) {
	c := setup(t)

	tests := []struct {
		name string
		req  *brokerv1.RegisterRequest
	}{
		{"empty email", &brokerv1.RegisterRequest{Role: "user", Email: "", Password: "testpass123", Name: "X"}},
		{"bad email", &brokerv1.RegisterRequest{Role: "user", Email: "nope", Password: "testpass123", Name: "X"}},
		{"short password", &brokerv1.RegisterRequest{Role: "user", Email: "a@b.com", Password: "short", Name: "X"}},
		{"empty name", &brokerv1.RegisterRequest{Role: "user", Email: "a@b.com", Password: "testpass123", Name: ""}},
		{"unknown role", &brokerv1.RegisterRequest{Role: "admin", Email: "a@b.com", Password: "testpass123", Name: "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Register(context.Background(), tt.req)
			if code(err) != codes.InvalidArgument {
				t.Errorf("expected InvalidArgument, got %v", code(err))
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	c := setup(t)
	req := &brokerv1.RegisterRequest{Role: "worker", Email: "dr@test.com", Password: "testpass123", Name: "Dr"}
	if _, err := c.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := c.Register(context.Background(), req)
	if code(err) != codes.AlreadyExists {
		t.Errorf("expected AlreadyExists, got %v", code(err))
	}
}

func TestLoginAndRefresh(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	if _, err := c.Register(ctx, &brokerv1.RegisterRequest{
		Role: "user", Email: "pat@test.com", Password: "testpass123", Name: "Pat",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := c.Login(ctx, &brokerv1.LoginRequest{Role: "user", Email: "pat@test.com", Password: "wrongpass1"})
	if code(err) != codes.Unauthenticated {
		t.Fatalf("wrong password: expected Unauthenticated, got %v", code(err))
	}
	_, err = c.Login(ctx, &brokerv1.LoginRequest{Role: "worker", Email: "pat@test.com", Password: "testpass123"})
	if code(err) != codes.Unauthenticated {
		t.Fatalf("wrong role: expected Unauthenticated, got %v", code(err))
	}

	lr, err := c.Login(ctx, &brokerv1.LoginRequest{Role: "user", Email: "pat@test.com", Password: "testpass123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	rr, err := c.Refresh(ctx, &brokerv1.RefreshRequest{RefreshToken: lr.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rr.RefreshToken == lr.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	_, err = c.Refresh(ctx, &brokerv1.RefreshRequest{RefreshToken: lr.RefreshToken})
	if code(err) != codes.Unauthenticated {
		t.Errorf("reused token: expected Unauthenticated, got %v", code(err))
	}
}

func TestUnauthenticated(t *testing.T) {
	c := setup(t)
	_, err := c.ListAppointments(context.Background(), &brokerv1.ListAppointmentsRequest{})
	if code(err) != codes.Unauthenticated {
		t.Errorf("expected Unauthenticated, got %v", code(err))
	}
}

// ----- appointment tests -----

func TestConsultationFlow(t *testing.T) {
	c := setup(t)
	u, w := register(t, c, "user"), register(t, c, "worker")

	a := book(t, c, u, w)
	if a.Status != "pending" || a.Modality != "clinic" || a.UserId != u.id {
		t.Fatalf("unexpected appointment: %+v", a)
	}

	resp, err := c.RespondToAppointment(w.ctx, &brokerv1.RespondRequest{Id: a.Id, Decision: "accept"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if resp.Appointment.Status != "accepted" {
		t.Fatalf("status = %s", resp.Appointment.Status)
	}

	if _, err := c.SendMessage(u.ctx, &brokerv1.SendMessageRequest{AppointmentId: a.Id, Body: "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	resp, err = c.StartConsultation(w.ctx, &brokerv1.AppointmentRef{Id: a.Id})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if resp.Appointment.StartTime == nil {
		t.Fatal("start time not set")
	}

	msgs, err := c.ListMessages(w.ctx, &brokerv1.ListMessagesRequest{AppointmentId: a.Id})
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs.Messages) != 1 || msgs.Messages[0].Body != "hello" || msgs.Messages[0].SenderRole != "user" {
		t.Fatalf("unexpected messages: %+v", msgs.Messages)
	}

	resp, err = c.CompleteAppointment(w.ctx, &brokerv1.AppointmentRef{Id: a.Id})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Appointment.EndTime == nil {
		t.Fatal("end time not set")
	}

	_, err = c.SendMessage(u.ctx, &brokerv1.SendMessageRequest{AppointmentId: a.Id, Body: "thanks"})
	if code(err) != codes.FailedPrecondition {
		t.Errorf("send after complete: expected FailedPrecondition, got %v", code(err))
	}
}

func TestInvalidTransition(t *testing.T) {
	c := setup(t)
	u, w := register(t, c, "user"), register(t, c, "worker")
	a := book(t, c, u, w)

	_, err := c.CompleteAppointment(w.ctx, &brokerv1.AppointmentRef{Id: a.Id})
	if code(err) != codes.FailedPrecondition {
		t.Errorf("expected FailedPrecondition, got %v", code(err))
	}
	_, err = c.RespondToAppointment(w.ctx, &brokerv1.RespondRequest{Id: a.Id, Decision: "later"})
	if code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", code(err))
	}
}

func TestOwnership(t *testing.T) {
	c := setup(t)
	u, w := register(t, c, "user"), register(t, c, "worker")
	stranger := register(t, c, "worker")
	a := book(t, c, u, w)

	_, err := c.GetAppointment(stranger.ctx, &brokerv1.AppointmentRef{Id: a.Id})
	if code(err) != codes.PermissionDenied {
		t.Errorf("get: expected PermissionDenied, got %v", code(err))
	}
	_, err = c.RespondToAppointment(stranger.ctx, &brokerv1.RespondRequest{Id: a.Id, Decision: "accept"})
	if code(err) != codes.PermissionDenied {
		t.Errorf("respond: expected PermissionDenied, got %v", code(err))
	}
	_, err = c.GetAppointment(u.ctx, &brokerv1.AppointmentRef{Id: a.Id + 100})
	if code(err) != codes.NotFound {
		t.Errorf("missing: expected NotFound, got %v", code(err))
	}

	list, err := c.ListAppointments(stranger.ctx, &brokerv1.ListAppointmentsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Appointments) != 0 {
		t.Errorf("stranger sees %d appointments", len(list.Appointments))
	}
	list, err = c.ListAppointments(w.ctx, &brokerv1.ListAppointmentsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Appointments) != 1 {
		t.Errorf("worker sees %d appointments, want 1", len(list.Appointments))
	}
}

func TestWorkerCannotBook(t *testing.T) {
	c := setup(t)
	w := register(t, c, "worker")
	_, err := c.CreateAppointment(w.ctx, &brokerv1.CreateAppointmentRequest{
		WorkerId: w.id, Name: "x", Reason: "y", Date: "2026-03-10",
	})
	if code(err) != codes.PermissionDenied {
		t.Errorf("expected PermissionDenied, got %v", code(err))
	}
}

func TestConcurrentRespond(t *testing.T) {
	c := setup(t)
	u, w := register(t, c, "user"), register(t, c, "worker")
	a := book(t, c, u, w)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, d := range []string{"accept", "reject"} {
		wg.Add(1)
		go func(i int, d string) {
			defer wg.Done()
			_, errs[i] = c.RespondToAppointment(w.ctx, &brokerv1.RespondRequest{Id: a.Id, Decision: d})
		}(i, d)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch code(err) {
		case codes.OK:
			ok++
		case codes.FailedPrecondition:
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d responses succeeded, want exactly 1", ok)
	}
}

// ----- directory tests -----

func TestWorkerDirectory(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	for _, req := range []*brokerv1.RegisterRequest{
		{Role: "worker", Name: "Dr Rao", Email: "rao@test.com", Password: "testpass123",
			Specialization: "Dentist", Experience: 12, ClinicLocation: "Pune"},
		{Role: "worker", Name: "Dr Bose", Email: "bose@test.com", Password: "testpass123",
			Specialization: "Eye", Experience: 8, ClinicLocation: "Pune"},
		{Role: "worker", Name: "Dr Iyer", Email: "iyer@test.com", Password: "testpass123",
			Specialization: "Dentist", Experience: 3, ClinicLocation: "Mumbai"},
	} {
		if _, err := c.Register(ctx, req); err != nil {
			t.Fatalf("register %s: %v", req.Name, err)
		}
	}
	u := register(t, c, "user")

	names := func(resp *brokerv1.ListWorkersResponse) []string {
		var out []string
		for _, w := range resp.Workers {
			out = append(out, w.Name)
		}
		return out
	}

	all, err := c.ListWorkers(u.ctx, &brokerv1.ListWorkersRequest{})
	if err != nil {
		t.Fatalf("list workers: %v", err)
	}
	if got := fmt.Sprint(names(all)); got != "[Dr Bose Dr Iyer Dr Rao]" {
		t.Errorf("all workers = %s", got)
	}

	dentists, err := c.ListWorkers(u.ctx, &brokerv1.ListWorkersRequest{Specialization: "dentist"})
	if err != nil {
		t.Fatalf("by specialization: %v", err)
	}
	if got := fmt.Sprint(names(dentists)); got != "[Dr Iyer Dr Rao]" {
		t.Errorf("dentists = %s", got)
	}
	if w := dentists.Workers[1]; w.Experience != 12 || w.ClinicLocation != "Pune" {
		t.Errorf("profile not carried: %+v", w)
	}

	pune, err := c.ListWorkers(u.ctx, &brokerv1.ListWorkersRequest{Query: "pune"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := fmt.Sprint(names(pune)); got != "[Dr Bose Dr Rao]" {
		t.Errorf("search pune = %s", got)
	}

	specs, err := c.ListSpecializations(u.ctx, &brokerv1.ListSpecializationsRequest{})
	if err != nil {
		t.Fatalf("specializations: %v", err)
	}
	if got := fmt.Sprint(specs.Specializations); got != "[Dentist Eye]" {
		t.Errorf("specializations = %s", got)
	}

	if _, err := c.ListWorkers(ctx, &brokerv1.ListWorkersRequest{}); code(err) != codes.Unauthenticated {
		t.Errorf("anonymous list: expected Unauthenticated, got %v", code(err))
	}
}

func TestAvailability(t *testing.T) {
	c := setup(t)
	u, w := register(t, c, "user"), register(t, c, "worker")

	for _, ts := range []string{"14:00", "9:30"} {
		slot, err := c.SetAvailability(w.ctx, &brokerv1.Slot{Date: "2026-03-10", TimeSlot: ts})
		if err != nil {
			t.Fatalf("set %s: %v", ts, err)
		}
		if slot.WorkerId != w.id {
			t.Errorf("slot worker = %d, want %d", slot.WorkerId, w.id)
		}
	}

	list, err := c.ListAvailability(u.ctx, &brokerv1.ListAvailabilityRequest{WorkerId: w.id, Date: "2026-03-10"})
	if err != nil {
		t.Fatalf("list availability: %v", err)
	}
	if len(list.Slots) != 2 || list.Slots[0].TimeSlot != "09:30" || list.Slots[1].TimeSlot != "14:00" {
		t.Fatalf("unexpected slots: %+v", list.Slots)
	}

	if _, err := c.RemoveAvailability(w.ctx, &brokerv1.Slot{Date: "2026-03-10", TimeSlot: "09:30"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, err = c.RemoveAvailability(w.ctx, &brokerv1.Slot{Date: "2026-03-10", TimeSlot: "09:30"})
	if code(err) != codes.NotFound {
		t.Errorf("remove twice: expected NotFound, got %v", code(err))
	}

	_, err = c.SetAvailability(u.ctx, &brokerv1.Slot{Date: "2026-03-10", TimeSlot: "11:00"})
	if code(err) != codes.PermissionDenied {
		t.Errorf("user sets slot: expected PermissionDenied, got %v", code(err))
	}
	_, err = c.SetAvailability(w.ctx, &brokerv1.Slot{Date: "10/03/2026", TimeSlot: "11:00"})
	if code(err) != codes.InvalidArgument {
		t.Errorf("bad date: expected InvalidArgument, got %v", code(err))
	}
	_, err = c.ListAvailability(u.ctx, &brokerv1.ListAvailabilityRequest{WorkerId: u.id})
	if code(err) != codes.NotFound {
		t.Errorf("user calendar: expected NotFound, got %v", code(err))
	}
}

func TestBookUnknownWorker(t *testing.T) {
	c := setup(t)
	u := register(t, c, "user")

	for _, id := range []int64{999, u.id} {
		_, err := c.CreateAppointment(u.ctx, &brokerv1.CreateAppointmentRequest{
			WorkerId: id, Name: "Asha", Reason: "fever", Date: "2026-03-10",
		})
		if code(err) != codes.NotFound {
			t.Errorf("worker %d: expected NotFound, got %v", id, code(err))
		}
	}
	list, err := c.ListAppointments(u.ctx, &brokerv1.ListAppointmentsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Appointments) != 0 {
		t.Errorf("nothing should be stored, got %d appointments", len(list.Appointments))
	}
}

func TestCodeMapping(t *testing.T) {
	tests := map[apperr.Kind]codes.Code{
		apperr.KindNotFound:          codes.NotFound,
		apperr.KindForbidden:         codes.PermissionDenied,
		apperr.KindValidation:        codes.InvalidArgument,
		apperr.KindBadRequest:        codes.InvalidArgument,
		apperr.KindInvalidTransition: codes.FailedPrecondition,
		apperr.KindChatUnavailable:   codes.FailedPrecondition,
		apperr.Kind("other"):         codes.Internal,
	}
	for k, want := range tests {
		if got := handler.Code(k); got != want {
			t.Errorf("Code(%s) = %v, want %v", k, got, want)
		}
	}
}

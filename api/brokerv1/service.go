package brokerv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "broker.v1.BrokerService"

// FullMethod returns the gRPC path of method, e.g. "/broker.v1.BrokerService/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type BrokerServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Refresh(context.Context, *RefreshRequest) (*AuthResponse, error)

	CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error)
	RespondToAppointment(context.Context, *RespondRequest) (*AppointmentResponse, error)
	StartConsultation(context.Context, *AppointmentRef) (*AppointmentResponse, error)
	CompleteAppointment(context.Context, *AppointmentRef) (*AppointmentResponse, error)
	CancelAppointment(context.Context, *AppointmentRef) (*AppointmentResponse, error)
	GetAppointment(context.Context, *AppointmentRef) (*AppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)

	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)

	ListWorkers(context.Context, *ListWorkersRequest) (*ListWorkersResponse, error)
	ListSpecializations(context.Context, *ListSpecializationsRequest) (*ListSpecializationsResponse, error)
	SetAvailability(context.Context, *Slot) (*Slot, error)
	RemoveAvailability(context.Context, *Slot) (*RemoveAvailabilityResponse, error)
	ListAvailability(context.Context, *ListAvailabilityRequest) (*ListAvailabilityResponse, error)
}

// UnimplementedBrokerServiceServer answers every method with Unimplemented.
type UnimplementedBrokerServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedBrokerServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedBrokerServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedBrokerServiceServer) Refresh(context.Context, *RefreshRequest) (*AuthResponse, error) {
	return nil, unimplemented("Refresh")
}
func (UnimplementedBrokerServiceServer) CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("CreateAppointment")
}
func (UnimplementedBrokerServiceServer) RespondToAppointment(context.Context, *RespondRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("RespondToAppointment")
}
func (UnimplementedBrokerServiceServer) StartConsultation(context.Context, *AppointmentRef) (*AppointmentResponse, error) {
	return nil, unimplemented("StartConsultation")
}
func (UnimplementedBrokerServiceServer) CompleteAppointment(context.Context, *AppointmentRef) (*AppointmentResponse, error) {
	return nil, unimplemented("CompleteAppointment")
}
func (UnimplementedBrokerServiceServer) CancelAppointment(context.Context, *AppointmentRef) (*AppointmentResponse, error) {
	return nil, unimplemented("CancelAppointment")
}
func (UnimplementedBrokerServiceServer) GetAppointment(context.Context, *AppointmentRef) (*AppointmentResponse, error) {
	return nil, unimplemented("GetAppointment")
}
func (UnimplementedBrokerServiceServer) ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	return nil, unimplemented("ListAppointments")
}
func (UnimplementedBrokerServiceServer) SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error) {
	return nil, unimplemented("SendMessage")
}
func (UnimplementedBrokerServiceServer) ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error) {
	return nil, unimplemented("ListMessages")
}
func (UnimplementedBrokerServiceServer) ListWorkers(context.Context, *ListWorkersRequest) (*ListWorkersResponse, error) {
	return nil, unimplemented("ListWorkers")
}
func (UnimplementedBrokerServiceServer) ListSpecializations(context.Context, *ListSpecializationsRequest) (*ListSpecializationsResponse, error) {
	return nil, unimplemented("ListSpecializations")
}
func (UnimplementedBrokerServiceServer) SetAvailability(context.Context, *Slot) (*Slot, error) {
	return nil, unimplemented("SetAvailability")
}
func (UnimplementedBrokerServiceServer) RemoveAvailability(context.Context, *Slot) (*RemoveAvailabilityResponse, error) {
	return nil, unimplemented("RemoveAvailability")
}
func (UnimplementedBrokerServiceServer) ListAvailability(context.Context, *ListAvailabilityRequest) (*ListAvailabilityResponse, error) {
	return nil, unimplemented("ListAvailability")
}

func unary[Req, Resp any](name string, call func(BrokerServiceServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BrokerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(BrokerServiceServer), ctx, req.(*Req))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BrokerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", BrokerServiceServer.Register),
		unary("Login", BrokerServiceServer.Login),
		unary("Refresh", BrokerServiceServer.Refresh),
		unary("CreateAppointment", BrokerServiceServer.CreateAppointment),
		unary("RespondToAppointment", BrokerServiceServer.RespondToAppointment),
		unary("StartConsultation", BrokerServiceServer.StartConsultation),
		unary("CompleteAppointment", BrokerServiceServer.CompleteAppointment),
		unary("CancelAppointment", BrokerServiceServer.CancelAppointment),
		unary("GetAppointment", BrokerServiceServer.GetAppointment),
		unary("ListAppointments", BrokerServiceServer.ListAppointments),
		unary("SendMessage", BrokerServiceServer.SendMessage),
		unary("ListMessages", BrokerServiceServer.ListMessages),
		unary("ListWorkers", BrokerServiceServer.ListWorkers),
		unary("ListSpecializations", BrokerServiceServer.ListSpecializations),
		unary("SetAvailability", BrokerServiceServer.SetAvailability),
		unary("RemoveAvailability", BrokerServiceServer.RemoveAvailability),
		unary("ListAvailability", BrokerServiceServer.ListAvailability),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "broker/v1/broker.proto",
}

func RegisterBrokerServiceServer(s grpc.ServiceRegistrar, srv BrokerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type BrokerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBrokerServiceClient(cc grpc.ClientConnInterface) *BrokerServiceClient {
	return &BrokerServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BrokerServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "Register", in, opts)
}

func (c *BrokerServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "Login", in, opts)
}

func (c *BrokerServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, "Refresh", in, opts)
}

func (c *BrokerServiceClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "CreateAppointment", in, opts)
}

func (c *BrokerServiceClient) RespondToAppointment(ctx context.Context, in *RespondRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "RespondToAppointment", in, opts)
}

func (c *BrokerServiceClient) StartConsultation(ctx context.Context, in *AppointmentRef, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "StartConsultation", in, opts)
}

func (c *BrokerServiceClient) CompleteAppointment(ctx context.Context, in *AppointmentRef, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "CompleteAppointment", in, opts)
}

func (c *BrokerServiceClient) CancelAppointment(ctx context.Context, in *AppointmentRef, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "CancelAppointment", in, opts)
}

func (c *BrokerServiceClient) GetAppointment(ctx context.Context, in *AppointmentRef, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "GetAppointment", in, opts)
}

func (c *BrokerServiceClient) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c.cc, "ListAppointments", in, opts)
}

func (c *BrokerServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c.cc, "SendMessage", in, opts)
}

func (c *BrokerServiceClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesResponse](ctx, c.cc, "ListMessages", in, opts)
}

func (c *BrokerServiceClient) ListWorkers(ctx context.Context, in *ListWorkersRequest, opts ...grpc.CallOption) (*ListWorkersResponse, error) {
	return invoke[ListWorkersResponse](ctx, c.cc, "ListWorkers", in, opts)
}

func (c *BrokerServiceClient) ListSpecializations(ctx context.Context, in *ListSpecializationsRequest, opts ...grpc.CallOption) (*ListSpecializationsResponse, error) {
	return invoke[ListSpecializationsResponse](ctx, c.cc, "ListSpecializations", in, opts)
}

func (c *BrokerServiceClient) SetAvailability(ctx context.Context, in *Slot, opts ...grpc.CallOption) (*Slot, error) {
	return invoke[Slot](ctx, c.cc, "SetAvailability", in, opts)
}

func (c *BrokerServiceClient) RemoveAvailability(ctx context.Context, in *Slot, opts ...grpc.CallOption) (*RemoveAvailabilityResponse, error) {
	return invoke[RemoveAvailabilityResponse](ctx, c.cc, "RemoveAvailability", in, opts)
}

func (c *BrokerServiceClient) ListAvailability(ctx context.Context, in *ListAvailabilityRequest, opts ...grpc.CallOption) (*ListAvailabilityResponse, error) {
	return invoke[ListAvailabilityResponse](ctx, c.cc, "ListAvailability", in, opts)
}

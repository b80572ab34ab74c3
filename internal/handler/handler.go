// Package handler is the HealthService gRPC API: login and registration,
// read access to the health datasets, and the signed-in user's profile.
//
// There is no generated code. Every message is a google.protobuf.Struct
// holding the JSON form of the model types, and the service descriptor is
// declared by hand below.
package handler

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/auth"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/catalog"
	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/session"
)

const ServiceName = "healthsync.v1.HealthService"

func FullMethod(name string) string { return "/" + ServiceName + "/" + name }

// PublicMethods need no bearer token. They are also the rate limited ones.
var PublicMethods = []string{FullMethod("Login"), FullMethod("Register")}

type HealthServiceServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAppointments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRecords(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMedications(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCalendar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryFunc func(HealthServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(HealthServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HealthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", HealthServiceServer.Login),
		unary("Register", HealthServiceServer.Register),
		unary("ListAppointments", HealthServiceServer.ListAppointments),
		unary("ListRecords", HealthServiceServer.ListRecords),
		unary("ListMedications", HealthServiceServer.ListMedications),
		unary("GetCalendar", HealthServiceServer.GetCalendar),
		unary("GetDashboard", HealthServiceServer.GetDashboard),
		unary("GetProfile", HealthServiceServer.GetProfile),
		unary("UpdateProfile", HealthServiceServer.UpdateProfile),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "healthsync/v1/health.proto",
}

func RegisterHealthServiceServer(s grpc.ServiceRegistrar, srv HealthServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Handler struct {
	src    catalog.Source
	secret string
	ttl    time.Duration
	delay  time.Duration
	log    *slog.Logger
	now    func() time.Time
}

var _ HealthServiceServer = (*Handler)(nil)

type Option func(*Handler)

func WithTokenTTL(d time.Duration) Option { return func(h *Handler) { h.ttl = d } }

// WithLoginDelay sets the simulated latency of Login and Register.
func WithLoginDelay(d time.Duration) Option { return func(h *Handler) { h.delay = d } }

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithClock fixes "today" for the calendar and dashboard.
func WithClock(now func() time.Time) Option { return func(h *Handler) { h.now = now } }

func New(src catalog.Source, secret string, opts ...Option) *Handler {
	h := &Handler{
		src:    src,
		secret: secret,
		ttl:    auth.DefaultTTL,
		delay:  session.DefaultDelay,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

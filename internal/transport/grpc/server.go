package grpcx

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName: имя в health-протоколе для проверки именно координатора.
const ServiceName = "watchtogether.Coordinator"

// Server: служебный gRPC: health и reflection для оркестратора и grpcurl.
type Server struct {
	srv    *grpc.Server
	health *health.Server
}

func NewServer(opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(StreamServerInterceptor()),
	}, opts...)

	srv := grpc.NewServer(opts...)
	h := health.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	reflection.Register(srv)

	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{srv: srv, health: h}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Drain переводит все статусы в NOT_SERVING, чтобы балансировщик снял трафик.
func (s *Server) Drain() {
	s.health.Shutdown()
}

func (s *Server) GracefulStop() {
	s.Drain()
	s.srv.GracefulStop()
}

func (s *Server) Stop() {
	s.srv.Stop()
}

package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bibbank/mortgage-advisor/pkg/auth"
)

// ServerOptions configures NewServer.
type ServerOptions struct {
	ServiceName string
	// Creds enables TLS when set.
	Creds credentials.TransportCredentials
	// Reflection registers the reflection service.
	Reflection bool
}

// Server wraps a gRPC server with the advisor handler registered.
type Server struct {
	gs     *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// AuthPolicy returns the access policy of the advisor API: health checks are
// public, SyncCatalog needs an admin and everything else any valid token.
func AuthPolicy() auth.Policy {
	return auth.Policy{
		Public: []string{
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		},
		MethodRoles: map[string][]string{
			MethodSyncCatalog: {auth.RoleAdmin},
		},
	}
}

// NewServer creates and configures the gRPC server.
func NewServer(handler AdvisorServiceServer, jwtService *auth.JWTService, opts ServerOptions, logger *slog.Logger) *Server {
	serverOpts := []grpc.ServerOption{
		grpc.UnaryInterceptor(auth.UnaryAuthInterceptor(jwtService, AuthPolicy())),
	}
	if opts.Creds != nil {
		serverOpts = append(serverOpts, grpc.Creds(opts.Creds))
		logger.Info("gRPC TLS enabled")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpc.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(opts.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	if opts.Reflection {
		reflection.Register(gs)
	}

	RegisterAdvisorServiceServer(gs, handler)

	return &Server{gs: gs, health: healthSrv, logger: logger}
}

// Serve starts the gRPC server on addr and blocks until it stops.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop marks the server not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}

package grpc_control

import (
	"context"
	"net"
	"time"

	"token-pulse/src/helpers"
	"token-pulse/src/logger"
	"token-pulse/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// FeedService is the health service name reported for the live feed
const FeedService = "token_pulse.Feed"

// -----------------------------------------------------------------------------
// HealthReporter mirrors the feed connection status into the standard gRPC
// health service so probes can follow it.
// -----------------------------------------------------------------------------

type HealthReporter struct {
	server *health.Server
	Logger *logger.Logger
}

// NewHealthReporter starts with the feed reported as NOT_SERVING
func NewHealthReporter(log *logger.Logger) *HealthReporter {
	srv := health.NewServer()
	srv.SetServingStatus(FeedService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{server: srv, Logger: log}
}

// -----------------------------------------------------------------------------

// OnConnectionStatus implements interfaces.IStatusObserver
func (h *HealthReporter) OnConnectionStatus(status models.ConnectionStatus) {
	serving := servingStatus(status)
	h.server.SetServingStatus(FeedService, serving)
	h.Logger.Debug("Feed health %s -> %s", status, serving)
}

func servingStatus(status models.ConnectionStatus) healthpb.HealthCheckResponse_ServingStatus {
	switch status {
	case models.StatusConnected:
		return healthpb.HealthCheckResponse_SERVING
	case models.StatusConnecting:
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	default:
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
}

// -----------------------------------------------------------------------------

// Check answers a health probe in-process
func (h *HealthReporter) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.server.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// -----------------------------------------------------------------------------

// Register installs health and reflection on srv
func (h *HealthReporter) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.server)
	reflection.Register(srv)
}

// -----------------------------------------------------------------------------

// Serve runs a gRPC server on addr until ctx is cancelled
func (h *HealthReporter) Serve(ctx context.Context, addr string) error {
	var lis net.Listener
	err := helpers.RetryWithBackoff("grpc listen", 3, 500*time.Millisecond, h.Logger, func() error {
		var err error
		lis, err = net.Listen("tcp", addr)
		return err
	})
	if err != nil {
		return err
	}

	grpcServer := grpc.NewServer()
	h.Register(grpcServer)

	go func() {
		<-ctx.Done()
		h.server.Shutdown()
		grpcServer.GracefulStop()
	}()

	h.Logger.Info("Starting gRPC health server on %s", addr)
	return grpcServer.Serve(lis)
}

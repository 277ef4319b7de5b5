package grpc_control

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"token-pulse/src/logger"
	"token-pulse/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func quietLogger() *logger.Logger {
	return logger.NewLoggerWithOutput("ERROR", "grpc-test", io.Discard)
}

func TestHealthReporterFollowsStatus(t *testing.T) {
	h := NewHealthReporter(quietLogger())
	ctx := context.Background()

	got, err := h.Check(ctx, FeedService)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, got)

	cases := []struct {
		status models.ConnectionStatus
		want   healthpb.HealthCheckResponse_ServingStatus
	}{
		{models.StatusConnecting, healthpb.HealthCheckResponse_SERVICE_UNKNOWN},
		{models.StatusConnected, healthpb.HealthCheckResponse_SERVING},
		{models.StatusError, healthpb.HealthCheckResponse_NOT_SERVING},
		{models.StatusConnected, healthpb.HealthCheckResponse_SERVING},
		{models.StatusDisconnected, healthpb.HealthCheckResponse_NOT_SERVING},
	}
	for _, tc := range cases {
		h.OnConnectionStatus(tc.status)
		got, err := h.Check(ctx, FeedService)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "status %s", tc.status)
	}
}

func TestHealthReporterUnknownService(t *testing.T) {
	h := NewHealthReporter(quietLogger())
	_, err := h.Check(context.Background(), "nope")
	assert.Error(t, err)
}

func TestHealthReporterServe(t *testing.T) {
	// Reserve a free port, then hand it to Serve
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	h := NewHealthReporter(quietLogger())
	h.OnConnectionStatus(models.StatusConnected)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- h.Serve(ctx, addr) }()

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	require.Eventually(t, func() bool {
		callCtx, done := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer done()
		resp, err := client.Check(callCtx, &healthpb.HealthCheckRequest{Service: FeedService})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T) (grpc_health_v1.HealthClient, *Prober, *atomic.Bool) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv, healthServer := NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var dbUp atomic.Bool
	prober := NewProber(healthServer, 10*time.Millisecond, nil,
		Probe{Name: "cache", Check: func(context.Context) error { return nil }},
		Probe{Name: "db", Check: func(context.Context) error {
			if dbUp.Load() {
				return nil
			}
			return errors.New("connection refused")
		}},
	)
	return grpc_health_v1.NewHealthClient(conn), prober, &dbUp
}

func status(t *testing.T, client grpc_health_v1.HealthClient, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestHealth_StartsNotServing(t *testing.T) {
	client, _, _ := startServer(t)

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, client, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, client, ServiceName))
}

func TestProber_FlipsStatus(t *testing.T) {
	client, prober, dbUp := startServer(t)
	ctx := context.Background()

	assert.False(t, prober.checkOnce(ctx))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, client, ""))

	dbUp.Store(true)
	assert.True(t, prober.checkOnce(ctx))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, client, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, client, ServiceName))

	dbUp.Store(false)
	assert.False(t, prober.checkOnce(ctx))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, client, ServiceName))
}

func TestProber_RunStopsNotServing(t *testing.T) {
	client, prober, dbUp := startServer(t)
	dbUp.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		prober.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return status(t, client, "") == grpc_health_v1.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, client, ""))
}

package grpc

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported next to the overall "" status.
const ServiceName = "foodcourt"

// NewServer builds the gRPC server exposing the standard health service.
// Statuses start as NOT_SERVING until a Prober reports otherwise.
func NewServer() (*grpc.Server, *health.Server) {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(s)
	return s, healthServer
}

// Probe checks one dependency, e.g. a database ping.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Prober runs dependency probes on an interval and flips the health status.
type Prober struct {
	health   *health.Server
	probes   []Probe
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

func NewProber(h *health.Server, interval time.Duration, log *zap.Logger, probes ...Probe) *Prober {
	if log == nil {
		log = zap.NewNop()
	}
	return &Prober{
		health:   h,
		probes:   probes,
		interval: interval,
		timeout:  2 * time.Second,
		log:      log,
	}
}

// Run probes immediately and then on every tick until ctx is cancelled, when
// the server is marked NOT_SERVING.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.checkOnce(ctx)
	for {
		select {
		case <-ticker.C:
			p.checkOnce(ctx)
		case <-ctx.Done():
			p.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			return
		}
	}
}

func (p *Prober) checkOnce(ctx context.Context) bool {
	healthy := true
	for _, probe := range p.probes {
		probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := probe.Check(probeCtx)
		cancel()
		if err != nil {
			healthy = false
			p.log.Warn("dependency probe failed", zap.String("probe", probe.Name), zap.Error(err))
		}
	}

	if healthy {
		p.setStatus(grpc_health_v1.HealthCheckResponse_SERVING)
	} else {
		p.setStatus(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	return healthy
}

func (p *Prober) setStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	p.health.SetServingStatus("", status)
	p.health.SetServingStatus(ServiceName, status)
}

package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported to grpc.health.v1 clients alongside the
// overall "" status.
const Service = "social.v1.API"

// Probe checks one backing dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthProber flips the health server between SERVING and NOT_SERVING
// depending on whether every probe passes.
type HealthProber struct {
	server  *health.Server
	probes  []Probe
	timeout time.Duration
	log     *zap.Logger
}

func NewHealthProber(srv *health.Server, log *zap.Logger, probes ...Probe) *HealthProber {
	return &HealthProber{server: srv, probes: probes, timeout: 2 * time.Second, log: log}
}

// Check runs every probe once and publishes the result.
func (h *HealthProber) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	for _, p := range h.probes {
		pctx, cancel := context.WithTimeout(ctx, h.timeout)
		err := p.Check(pctx)
		cancel()
		if err != nil {
			h.log.Warn("health probe failed", zap.String("probe", p.Name), zap.Error(err))
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.server.SetServingStatus("", st)
	h.server.SetServingStatus(Service, st)
	return st
}

// Run probes every interval until ctx is done, then marks everything as
// NOT_SERVING.
func (h *HealthProber) Run(ctx context.Context, interval time.Duration) error {
	h.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return nil
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Package grpc exposes the product service health over the standard gRPC health protocol.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "cafekiosk.product.v1.ProductCatalog"

const defaultInterval = 10 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthProbe periodically pings storage and mirrors the result into a health server.
type HealthProbe struct {
	pinger   Pinger
	health   *health.Server
	interval time.Duration
	logger   *slog.Logger
	last     grpc_health_v1.HealthCheckResponse_ServingStatus
}

func NewHealthProbe(pinger Pinger, healthServer *health.Server, interval time.Duration, logger *slog.Logger) *HealthProbe {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &HealthProbe{
		pinger:   pinger,
		health:   healthServer,
		interval: interval,
		logger:   logger.With("component", "health"),
		last:     grpc_health_v1.HealthCheckResponse_UNKNOWN,
	}
}

// RegisterFunc returns a registration that adds the health service to a gRPC server.
func RegisterFunc(healthServer *health.Server) func(*grpc.Server) {
	return func(s *grpc.Server) {
		grpc_health_v1.RegisterHealthServer(s, healthServer)
	}
}

// Check pings once and publishes the resulting status.
func (p *HealthProbe) Check(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := p.pinger.Ping(pingCtx); err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		p.logger.WarnContext(ctx, "Storage ping failed", "error", err)
	}
	if status != p.last {
		p.logger.InfoContext(ctx, "Health status changed", "from", p.last.String(), "to", status.String())
		p.last = status
	}
	p.health.SetServingStatus("", status)
	p.health.SetServingStatus(ServiceName, status)
	return status
}

// Run checks immediately and then on every interval until ctx is done.
func (p *HealthProbe) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

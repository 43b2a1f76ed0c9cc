// Package grpc exposes the standard gRPC health service backed by store reachability.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service entry tracking the product API.
const ServiceName = "inventory.ProductService"

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker keeps the health status of ServiceName and of the server as a whole
// in line with the result of the latest store ping.
type HealthChecker struct {
	server   *health.Server
	store    Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewHealthChecker(store Pinger, interval time.Duration, logger *slog.Logger) *HealthChecker {
	server := health.NewServer()
	server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthChecker{
		server:   server,
		store:    store,
		interval: interval,
		timeout:  interval,
		logger:   logger.With("component", "grpc-health"),
	}
}

// Register is a server.RegistrationFunc.
func (h *HealthChecker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Check pings the store once and publishes the resulting status.
func (h *HealthChecker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(pingCtx); err != nil {
		h.logger.WarnContext(ctx, "Store ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus(ServiceName, status)
	h.server.SetServingStatus("", status)
	return status
}

// Run checks immediately and then every interval until ctx is done.
// On return every status is NOT_SERVING.
func (h *HealthChecker) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			h.logger.Info("Health checker stopped")
			return nil
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Package grpc exposes engine liveness over the standard gRPC health
// checking protocol.
package grpc

import (
	"context"
	"time"

	"github.com/lcalzada-xor/wsniff/internal/core/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service reported for the capture engine.
const ServiceName = "wsniff.Engine"

// DefaultPollInterval is how often engine state is sampled.
const DefaultPollInterval = time.Second

// StateSource reports the current engine state.
type StateSource interface {
	State() domain.EngineState
}

// HealthServer mirrors engine state into a gRPC health server: SERVING
// while capturing, NOT_SERVING otherwise.
type HealthServer struct {
	Health   *health.Server
	source   StateSource
	interval time.Duration
}

// NewHealthServer creates a health reporter for source.
func NewHealthServer(source StateSource, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	h := &HealthServer{
		Health:   health.NewServer(),
		source:   source,
		interval: interval,
	}
	h.Sync()
	return h
}

// NewGrpcServer returns a grpc.Server with the health service registered.
func NewGrpcServer(h *HealthServer) *grpc.Server {
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, h.Health)
	return s
}

// Sync publishes the current engine state once.
func (h *HealthServer) Sync() {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if h.source.State() == domain.StateRunning {
		status = healthpb.HealthCheckResponse_SERVING
	}
	// The overall server is healthy if the process is up
	h.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.Health.SetServingStatus(ServiceName, status)
}

// Run polls engine state until ctx is done, then marks every service
// NOT_SERVING.
func (h *HealthServer) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.Health.Shutdown()
			return
		case <-ticker.C:
			h.Sync()
		}
	}
}

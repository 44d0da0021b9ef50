package grpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the service reported alongside the overall ("") status.
const ServiceName = "nexus.Storefront"

type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves grpc.health.v1 and flips between SERVING and
// NOT_SERVING as the database answers pings.
type HealthHandler struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
	log      *logrus.Logger
}

func NewHealthHandler(db Pinger, interval time.Duration, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		server:   health.NewServer(),
		db:       db,
		interval: interval,
		log:      logger,
	}
}

func (h *HealthHandler) Register(s *gogrpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
	h.log.Info("gRPC health and reflection services registered")
}

// Probe pings the database once and publishes the result.
func (h *HealthHandler) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(pingCtx); err != nil {
		h.log.Warnf("gRPC Health: database ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run probes on every tick until ctx is done, then marks everything
// NOT_SERVING so watchers see the shutdown.
func (h *HealthHandler) Run(ctx context.Context) {
	h.Probe(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			h.log.Info("gRPC Health: shut down")
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health check name probes ask for.
const ServiceName = "matchbot"

// HealthRegistrar exposes grpc.health.v1. The bot reports NOT_SERVING while
// maintenance mode is on, so orchestrators can tell it apart from an outage.
type HealthRegistrar struct {
	srv *health.Server
}

func NewHealthRegistrar() *HealthRegistrar {
	h := &HealthRegistrar{srv: health.NewServer()}
	h.SetMaintenance(false)
	return h
}

func (h *HealthRegistrar) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
}

// SetMaintenance updates the serving status of ServiceName. The overall
// ("") status stays SERVING: the process itself is healthy.
func (h *HealthRegistrar) SetMaintenance(on bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if on {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.srv.SetServingStatus(ServiceName, status)
}

// Shutdown marks every service NOT_SERVING ahead of a stop.
func (h *HealthRegistrar) Shutdown() {
	h.srv.Shutdown()
}

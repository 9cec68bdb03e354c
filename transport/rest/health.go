package rest

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports the reachability of the backing services.
type HealthChecker struct {
	services         map[string]Pinger
	publisherEnabled bool
	now              func() time.Time
}

func NewHealthChecker(services map[string]Pinger, publisherEnabled bool) *HealthChecker {
	return &HealthChecker{
		services:         services,
		publisherEnabled: publisherEnabled,
		now:              time.Now,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (that *HealthChecker) Check(ctx context.Context) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "ok",
		Timestamp: that.now().UTC(),
		Services:  make(map[string]string, len(that.services)+1),
	}

	for name, service := range that.services {
		if err := service.Ping(ctx); err != nil {
			response.Services[name] = "disconnected"
			response.Status = "degraded"
			continue
		}
		response.Services[name] = "connected"
	}

	response.Services["publisher"] = "disabled"
	if that.publisherEnabled {
		response.Services["publisher"] = "enabled"
	}

	return response
}

func (that *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, that.health.Check(r.Context()))
}

package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/MisterMushn/bilanzieren/pkg/contracts"
)

// HealthService reports service liveness, readiness, and version.
type HealthService struct {
	workspaces *WorkspaceService
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Runtime   map[string]any `json:"runtime,omitempty"`
	Services  map[string]any `json:"services,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(workspaces *WorkspaceService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		workspaces: workspaces,
		startTime:  time.Now().UTC(),
		logger:     logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns the full health snapshot.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
		Runtime: map[string]any{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
		Services: map[string]any{
			"workspaces": map[string]any{
				"status": "up",
				"count":  s.workspaces.Count(),
			},
		},
	}
}

// ReadinessCheck reports whether the service can take traffic. The
// store is in memory, so readiness follows liveness.
func (s *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
	}
}

// LivenessCheck reports process liveness.
func (s *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
	}
}

// Version returns build version details.
func (s *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

package healthcheck

import (
	"time"

	"github.com/dcm-project/orchestration-router/internal/store/model"
)

// Status is the last-known health of a provider endpoint.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ProviderHealth is the ephemeral per-provider health record. It is held
// in memory only and rebuilt from probes after a restart.
type ProviderHealth struct {
	Provider            model.Provider
	Status              Status
	LastCheckedAt       time.Time
	LastLatencyMs       *int64
	ConsecutiveFailures int
}

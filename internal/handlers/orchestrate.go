package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dcm-project/orchestration-router/internal/api/v1alpha1"
	"github.com/dcm-project/orchestration-router/internal/healthcheck"
	"github.com/dcm-project/orchestration-router/internal/store/model"
)

// HealthReader exposes the prober state needed by the health endpoint.
type HealthReader interface {
	Snapshot() []healthcheck.ProviderHealth
	Status(provider model.Provider) healthcheck.ProviderHealth
}

func (h *Handler) Orchestrate(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.OrchestrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, newError("validation-error", "Validation failed", "malformed request body", http.StatusBadRequest))
		return
	}

	response, err := h.orchestrationService.Orchestrate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, "orchestrate-error", "Failed to orchestrate invocation", err)
		return
	}

	// Normalized transport failures still answer 200; the envelope carries
	// the failure status and error kind.
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := h.health.Snapshot()
	providers := make([]v1alpha1.ProviderHealth, len(snapshot))
	for i, health := range snapshot {
		providers[i] = v1alpha1.ProviderHealth{
			Provider:            health.Provider.String(),
			Status:              string(health.Status),
			LastLatencyMs:       health.LastLatencyMs,
			ConsecutiveFailures: health.ConsecutiveFailures,
		}
		if !health.LastCheckedAt.IsZero() {
			checkedAt := health.LastCheckedAt
			providers[i].LastCheckedAt = &checkedAt
		}
	}

	writeJSON(w, http.StatusOK, v1alpha1.HealthResponse{
		Status:    h.overallStatus(r.Context()),
		Providers: providers,
	})
}

// overallStatus is healthy when at least one provider configured in the
// active policy is not unhealthy.
func (h *Handler) overallStatus(ctx context.Context) string {
	active, err := h.policyService.GetActivePolicy(ctx)
	if err != nil {
		// No active policy (or a store error): nothing meaningful to report.
		return string(healthcheck.StatusUnknown)
	}

	for _, provider := range active.ConfiguredProviders() {
		if h.health.Status(provider).Status != healthcheck.StatusUnhealthy {
			return string(healthcheck.StatusHealthy)
		}
	}
	return string(healthcheck.StatusUnhealthy)
}

func (h *Handler) ListInvocations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeProblem(w, newError("validation-error", "Validation failed", "limit must be an integer", http.StatusBadRequest))
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeProblem(w, newError("validation-error", "Validation failed", "offset must be an integer", http.StatusBadRequest))
		return
	}

	var provider, status *string
	if v := r.URL.Query().Get("provider"); v != "" {
		provider = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}

	invocations, err := h.orchestrationService.ListInvocations(r.Context(), provider, status, limit, offset)
	if err != nil {
		writeServiceError(w, "list-error", "Failed to list invocations", err)
		return
	}
	writeJSON(w, http.StatusOK, invocations)
}

func queryInt(r *http.Request, key string) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

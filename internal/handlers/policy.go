package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dcm-project/orchestration-router/internal/api/v1alpha1"
	"github.com/dcm-project/orchestration-router/internal/service"
	"github.com/go-chi/chi/v5"
)

// Handler serves the policy administration and invocation surfaces.
type Handler struct {
	policyService        *service.PolicyService
	orchestrationService *service.OrchestrationService
	health               HealthReader
}

// NewHandler creates a new Handler with the given services.
func NewHandler(policyService *service.PolicyService, orchestrationService *service.OrchestrationService, health HealthReader) *Handler {
	return &Handler{
		policyService:        policyService,
		orchestrationService: orchestrationService,
		health:               health,
	}
}

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policyService.ListPolicies(r.Context())
	if err != nil {
		writeServiceError(w, "list-error", "Failed to list policies", err)
		return
	}
	writeJSON(w, http.StatusOK, v1alpha1.PolicyList{Policies: policies})
}

func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.Policy
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, newError("validation-error", "Validation failed", "malformed request body", http.StatusBadRequest))
		return
	}

	created, err := h.policyService.CreatePolicy(r.Context(), &req)
	if err != nil {
		writeServiceError(w, "create-error", "Failed to create policy", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.policyService.GetPolicy(r.Context(), chi.URLParam(r, "policyName"))
	if err != nil {
		writeServiceError(w, "get-error", "Failed to get policy", err)
		return
	}
	writeJSON(w, http.StatusOK, policy)
}

func (h *Handler) ActivatePolicy(w http.ResponseWriter, r *http.Request) {
	activated, err := h.policyService.ActivatePolicy(r.Context(), chi.URLParam(r, "policyName"))
	if err != nil {
		writeServiceError(w, "activate-error", "Failed to activate policy", err)
		return
	}
	writeJSON(w, http.StatusOK, activated)
}

func (h *Handler) UpdateProviderTarget(w http.ResponseWriter, r *http.Request) {
	var req v1alpha1.UpdateTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, newError("validation-error", "Validation failed", "malformed request body", http.StatusBadRequest))
		return
	}

	updated, err := h.policyService.UpdateProviderTarget(r.Context(),
		chi.URLParam(r, "policyName"), chi.URLParam(r, "provider"), req.Target)
	if err != nil {
		writeServiceError(w, "update-error", "Failed to update target", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.policyService.DeletePolicy(r.Context(), chi.URLParam(r, "policyName")); err != nil {
		writeServiceError(w, "delete-error", "Failed to delete policy", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

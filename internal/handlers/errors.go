package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dcm-project/orchestration-router/internal/api/v1alpha1"
	"github.com/dcm-project/orchestration-router/internal/service"
	log "github.com/sirupsen/logrus"
)

// newError creates an RFC 7807 compliant error response.
func newError(errType, title, detail string, status int) v1alpha1.Error {
	return v1alpha1.Error{
		Type:   errType,
		Title:  title,
		Detail: &detail,
		Status: &status,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func writeProblem(w http.ResponseWriter, problem v1alpha1.Error) {
	w.Header().Set("Content-Type", "application/problem+json")
	status := http.StatusInternalServerError
	if problem.Status != nil {
		status = *problem.Status
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem); err != nil {
		log.Errorf("Failed to encode problem response: %v", err)
	}
}

// writeServiceError maps a service error code to its HTTP problem response.
// Callers never see raw datastore or transport errors.
func writeServiceError(w http.ResponseWriter, fallbackType, fallbackTitle string, err error) {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		switch svcErr.Code {
		case service.ErrCodeValidation:
			writeProblem(w, newError("validation-error", "Validation failed", svcErr.Message, http.StatusBadRequest))
			return
		case service.ErrCodeNotFound:
			writeProblem(w, newError("not-found", "Resource not found", svcErr.Message, http.StatusNotFound))
			return
		case service.ErrCodeConflict:
			writeProblem(w, newError("conflict", "Resource conflict", svcErr.Message, http.StatusConflict))
			return
		case service.ErrCodeNoActivePolicy:
			writeProblem(w, newError("no-active-policy", "No active policy", svcErr.Message, http.StatusServiceUnavailable))
			return
		case service.ErrCodeNoProviderTarget:
			writeProblem(w, newError("no-provider-target", "No provider target", svcErr.Message, http.StatusServiceUnavailable))
			return
		}
	}
	writeProblem(w, newError(fallbackType, fallbackTitle, err.Error(), http.StatusInternalServerError))
}

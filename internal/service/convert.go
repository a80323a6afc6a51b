package service

import (
	"encoding/json"
	"time"

	"github.com/dcm-project/orchestration-router/internal/api/v1alpha1"
	"github.com/dcm-project/orchestration-router/internal/store/model"
)

// ModelToPolicy converts a database model to an API response type.
func ModelToPolicy(m *model.Policy) *v1alpha1.Policy {
	id := m.ID.String()
	isActive := m.IsActive

	targets := make(map[string]string)
	for _, provider := range m.ConfiguredProviders() {
		targets[provider.String()] = m.Target(provider)
	}

	return &v1alpha1.Policy{
		Id:              &id,
		Name:            m.Name,
		DefaultProvider: m.DefaultProvider.String(),
		ProviderTargets: targets,
		IsActive:        &isActive,
		CreateTime:      PtrTime(m.CreateTime),
		UpdateTime:      PtrTime(m.UpdateTime),
	}
}

// ModelToInvocation converts an invocation log row to its API shape.
func ModelToInvocation(m *model.Invocation) *v1alpha1.Invocation {
	inv := &v1alpha1.Invocation{
		Id:         m.ID.String(),
		PolicyName: m.PolicyName,
		Provider:   m.Provider.String(),
		Target:     m.Target,
		Status:     m.Status,
		LatencyMs:  m.LatencyMs,
		Payload:    json.RawMessage(m.Payload),
		CreateTime: PtrTime(m.CreateTime),
	}
	if m.ErrorKind != "" {
		kind := m.ErrorKind
		inv.ErrorKind = &kind
	}
	return inv
}

// PtrTime returns a pointer to t, or nil for the zero time.
func PtrTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

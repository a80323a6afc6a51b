// Package v1alpha1 defines the wire types served by the orchestration
// router API.
package v1alpha1

import (
	"encoding/json"
	"time"
)

// Policy is a routing policy as exposed by the administration API.
type Policy struct {
	Id              *string           `json:"id,omitempty"`
	Name            string            `json:"name"`
	DefaultProvider string            `json:"default_provider"`
	ProviderTargets map[string]string `json:"provider_targets,omitempty"`
	IsActive        *bool             `json:"is_active,omitempty"`
	CreateTime      *time.Time        `json:"create_time,omitempty"`
	UpdateTime      *time.Time        `json:"update_time,omitempty"`
}

// PolicyList is the response of the list-policies operation, ordered by
// creation time ascending.
type PolicyList struct {
	Policies []Policy `json:"policies"`
}

// UpdateTargetRequest carries a new invocation target for one provider of
// a policy, typically after a deployment produced a new function URL.
type UpdateTargetRequest struct {
	Target string `json:"target"`
}

// OrchestrateRequest is a logical invocation request. Provider, when set,
// is an explicit override that bypasses health-based selection.
type OrchestrateRequest struct {
	Target   string          `json:"target,omitempty"`
	Payload  json.RawMessage `json:"payload"`
	Provider *string         `json:"provider,omitempty"`
}

// OrchestrateResponse is the uniform invocation envelope, independent of
// which provider served the request.
type OrchestrateResponse struct {
	ProviderUsed string          `json:"provider_used"`
	Status       string          `json:"status"`
	LatencyMs    int64           `json:"latency_ms"`
	Response     json.RawMessage `json:"response,omitempty"`
	ErrorKind    *string         `json:"error_kind,omitempty"`
	Attempts     int             `json:"attempts"`
}

// ProviderHealth summarizes the last-known health of one provider.
type ProviderHealth struct {
	Provider            string     `json:"provider"`
	Status              string     `json:"status"`
	LastCheckedAt       *time.Time `json:"last_checked_at,omitempty"`
	LastLatencyMs       *int64     `json:"last_latency_ms,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
}

// HealthResponse reports per-provider health plus an overall status:
// healthy when at least one configured provider is not unhealthy.
type HealthResponse struct {
	Status    string           `json:"status"`
	Providers []ProviderHealth `json:"providers"`
}

// Invocation is one entry of the persisted invocation log.
type Invocation struct {
	Id         string          `json:"id"`
	PolicyName string          `json:"policy_name"`
	Provider   string          `json:"provider"`
	Target     string          `json:"target"`
	Status     string          `json:"status"`
	ErrorKind  *string         `json:"error_kind,omitempty"`
	LatencyMs  int64           `json:"latency_ms"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreateTime *time.Time      `json:"create_time,omitempty"`
}

// InvocationList is the response of the invocation log listing.
type InvocationList struct {
	Invocations []Invocation `json:"invocations"`
	Total       int64        `json:"total"`
}

// Error is an RFC 7807 style problem response.
type Error struct {
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Detail *string `json:"detail,omitempty"`
	Status *int    `json:"status,omitempty"`
}

package router

import (
	"errors"
	"fmt"

	"github.com/dcm-project/orchestration-router/internal/healthcheck"
	"github.com/dcm-project/orchestration-router/internal/store/model"
)

// ErrNoProviderTarget means the provider that should serve the request has
// no configured invocation target. This is a configuration gap, distinct
// from the provider being down.
var ErrNoProviderTarget = errors.New("no target configured for provider")

// HealthSource supplies last-known provider health without blocking.
type HealthSource interface {
	Status(provider model.Provider) healthcheck.ProviderHealth
}

// Selection is a resolved provider endpoint.
type Selection struct {
	Provider model.Provider
	Target   string
}

// Resolver decides which provider endpoint serves an invocation, based on
// the active policy and last-known provider health.
type Resolver struct {
	health HealthSource
}

func NewResolver(health HealthSource) *Resolver {
	return &Resolver{health: health}
}

// Route returns the ordered candidate selections for a request. The first
// entry is the provider chosen per policy and health; any further entries
// are failover candidates for the caller to try in order.
//
// An explicit override always wins, even when the override is marked
// unhealthy: the caller asserted intent, so the invocation failure surfaces
// instead of being silently rerouted. Overrides never fail over, hence the
// single-entry result.
//
// Without an override the candidate list is the policy's default provider
// followed by the remaining configured providers in the fixed aws, azure,
// gcp order. Unhealthy candidates are skipped; unknown is not disqualifying
// so a cold-started prober never blocks routing. When every candidate is
// unhealthy the default is returned alone, guaranteeing forward progress
// and a diagnosable failure.
func (r *Resolver) Route(policy *model.Policy, override *model.Provider) ([]Selection, error) {
	if override != nil {
		target := policy.Target(*override)
		if target == "" {
			return nil, fmt.Errorf("%w %s in policy %q", ErrNoProviderTarget, *override, policy.Name)
		}
		return []Selection{{Provider: *override, Target: target}}, nil
	}

	ordered := orderCandidates(policy)
	if len(ordered) == 0 {
		return nil, fmt.Errorf("%w: policy %q configures no targets", ErrNoProviderTarget, policy.Name)
	}

	var routable []Selection
	for _, provider := range ordered {
		if r.health.Status(provider).Status == healthcheck.StatusUnhealthy {
			continue
		}
		routable = append(routable, Selection{Provider: provider, Target: policy.Target(provider)})
	}
	if len(routable) > 0 {
		return routable, nil
	}

	// All candidates unhealthy: attempt the default anyway.
	fallback := ordered[0]
	return []Selection{{Provider: fallback, Target: policy.Target(fallback)}}, nil
}

// Resolve returns only the chosen provider endpoint.
func (r *Resolver) Resolve(policy *model.Policy, override *model.Provider) (Selection, error) {
	candidates, err := r.Route(policy, override)
	if err != nil {
		return Selection{}, err
	}
	return candidates[0], nil
}

// orderCandidates lists the policy's configured providers with the default
// provider first and the rest in the fixed fallback order.
func orderCandidates(policy *model.Policy) []model.Provider {
	configured := policy.ConfiguredProviders()

	var ordered []model.Provider
	for _, provider := range configured {
		if provider == policy.DefaultProvider {
			ordered = append(ordered, provider)
			break
		}
	}
	for _, provider := range configured {
		if provider != policy.DefaultProvider {
			ordered = append(ordered, provider)
		}
	}
	return ordered
}

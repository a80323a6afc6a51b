package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dcm-project/orchestration-router/internal/api/v1alpha1"
	"github.com/dcm-project/orchestration-router/internal/config"
	"github.com/dcm-project/orchestration-router/internal/store"
	"github.com/dcm-project/orchestration-router/internal/store/model"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PolicyService handles business logic for routing policy administration.
// It is the sole mutation path for policies; operator tooling goes through
// it instead of touching the datastore.
type PolicyService struct {
	store store.Store
}

// NewPolicyService creates a new PolicyService with the given store.
func NewPolicyService(store store.Store) *PolicyService {
	return &PolicyService{store: store}
}

// ListPolicies returns all policies ordered by creation time.
func (s *PolicyService) ListPolicies(ctx context.Context) ([]v1alpha1.Policy, error) {
	policies, err := s.store.Policy().List(ctx)
	if err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to list policies: %v", err))
	}

	result := make([]v1alpha1.Policy, len(policies))
	for i := range policies {
		result[i] = *ModelToPolicy(&policies[i])
	}
	return result, nil
}

// CreatePolicy validates and persists a new policy. New policies are always
// inactive; activation is a separate explicit operation.
func (s *PolicyService) CreatePolicy(ctx context.Context, req *v1alpha1.Policy) (*v1alpha1.Policy, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, NewValidationError("policy name must not be empty")
	}

	defaultProvider, err := model.ParseProvider(req.DefaultProvider)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}

	policy := model.Policy{
		ID:              uuid.New(),
		Name:            req.Name,
		DefaultProvider: defaultProvider,
	}
	for name, target := range req.ProviderTargets {
		provider, err := model.ParseProvider(name)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		if err := validateTarget(target); err != nil {
			return nil, NewValidationError(fmt.Sprintf("invalid target for provider %s: %v", provider, err))
		}
		policy.SetTarget(provider, target)
	}

	if _, err := s.store.Policy().GetByName(ctx, req.Name); err == nil {
		return nil, NewConflictError(fmt.Sprintf("policy %q already exists", req.Name))
	} else if !errors.Is(err, store.ErrPolicyNotFound) {
		return nil, NewInternalError(fmt.Sprintf("failed to check policy name: %v", err))
	}

	created, err := s.store.Policy().Create(ctx, policy)
	if err != nil {
		if errors.Is(err, store.ErrPolicyNameTaken) {
			return nil, NewConflictError(fmt.Sprintf("policy %q already exists", req.Name))
		}
		return nil, NewInternalError(fmt.Sprintf("failed to create policy: %v", err))
	}

	log.Infof("Created policy: %s (%s)", created.Name, created.ID)
	return ModelToPolicy(created), nil
}

// GetPolicy retrieves a policy by name.
func (s *PolicyService) GetPolicy(ctx context.Context, name string) (*v1alpha1.Policy, error) {
	policy, err := s.store.Policy().GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("policy %q not found", name))
		}
		return nil, NewInternalError(fmt.Sprintf("failed to get policy: %v", err))
	}
	return ModelToPolicy(policy), nil
}

// ActivatePolicy switches the active policy to the named one. The store
// performs the deactivate-then-activate atomically, so there is never a
// moment with zero or two active policies.
func (s *PolicyService) ActivatePolicy(ctx context.Context, name string) (*v1alpha1.Policy, error) {
	activated, err := s.store.Policy().Activate(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("policy %q not found", name))
		}
		return nil, NewInternalError(fmt.Sprintf("failed to activate policy: %v", err))
	}

	log.Infof("Activated policy: %s (default provider %s)", activated.Name, activated.DefaultProvider)
	return ModelToPolicy(activated), nil
}

// UpdateProviderTarget updates one provider target of a policy, used after
// a fresh deployment produces a new function URL or ARN.
func (s *PolicyService) UpdateProviderTarget(ctx context.Context, name, providerName, target string) (*v1alpha1.Policy, error) {
	provider, err := model.ParseProvider(providerName)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}
	if err := validateTarget(target); err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid target for provider %s: %v", provider, err))
	}

	updated, err := s.store.Policy().UpdateTarget(ctx, name, provider, target)
	if err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("policy %q not found", name))
		}
		return nil, NewInternalError(fmt.Sprintf("failed to update target: %v", err))
	}

	log.Infof("Updated %s target of policy %s", provider, name)
	return ModelToPolicy(updated), nil
}

// GetActivePolicy returns the active policy model, or
// store.ErrNoActivePolicy when none is marked active.
func (s *PolicyService) GetActivePolicy(ctx context.Context) (*model.Policy, error) {
	return s.store.Policy().GetActive(ctx)
}

// DeletePolicy removes a policy by name.
func (s *PolicyService) DeletePolicy(ctx context.Context, name string) error {
	if err := s.store.Policy().Delete(ctx, name); err != nil {
		if errors.Is(err, store.ErrPolicyNotFound) {
			return NewNotFoundError(fmt.Sprintf("policy %q not found", name))
		}
		return NewInternalError(fmt.Sprintf("failed to delete policy: %v", err))
	}

	log.Infof("Deleted policy: %s", name)
	return nil
}

// EnsureSeedPolicy creates and activates the configured seed policy when
// the store holds no policies yet, so steady state always has an active
// policy without a manual bootstrap step.
func (s *PolicyService) EnsureSeedPolicy(ctx context.Context, seed *config.SeedConfig) error {
	if seed == nil || seed.PolicyName == "" {
		return nil
	}

	count, err := s.store.Policy().Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	targets := map[string]string{}
	if seed.AWSTarget != "" {
		targets[model.ProviderAWS.String()] = seed.AWSTarget
	}
	if seed.AzureTarget != "" {
		targets[model.ProviderAzure.String()] = seed.AzureTarget
	}
	if seed.GCPTarget != "" {
		targets[model.ProviderGCP.String()] = seed.GCPTarget
	}

	if _, err := s.CreatePolicy(ctx, &v1alpha1.Policy{
		Name:            seed.PolicyName,
		DefaultProvider: seed.DefaultProvider,
		ProviderTargets: targets,
	}); err != nil {
		return err
	}
	if _, err := s.ActivatePolicy(ctx, seed.PolicyName); err != nil {
		return err
	}

	log.Infof("Seeded policy %s as active", seed.PolicyName)
	return nil
}

// validateTarget accepts a non-empty opaque target. HTTP-looking targets
// must parse as absolute URLs; other forms (e.g. AWS ARNs) pass through.
func validateTarget(target string) error {
	if strings.TrimSpace(target) == "" {
		return errors.New("target must not be empty")
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		if _, err := url.ParseRequestURI(target); err != nil {
			return fmt.Errorf("malformed URL: %w", err)
		}
	}
	return nil
}

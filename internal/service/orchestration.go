package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dcm-project/orchestration-router/internal/api/v1alpha1"
	"github.com/dcm-project/orchestration-router/internal/config"
	"github.com/dcm-project/orchestration-router/internal/invoker"
	"github.com/dcm-project/orchestration-router/internal/router"
	"github.com/dcm-project/orchestration-router/internal/store"
	"github.com/dcm-project/orchestration-router/internal/store/model"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	defaultInvocationPageSize = 50
	maxInvocationPageSize     = 100
)

// OrchestrationService maps a logical invocation request onto a concrete
// provider endpoint via the active policy and dispatches the call.
type OrchestrationService struct {
	store          store.Store
	resolver       *router.Resolver
	invoker        *invoker.Invoker
	retryOnFailure bool
}

func NewOrchestrationService(dataStore store.Store, resolver *router.Resolver, inv *invoker.Invoker, cfg *config.RouterConfig) *OrchestrationService {
	return &OrchestrationService{
		store:          dataStore,
		resolver:       resolver,
		invoker:        inv,
		retryOnFailure: cfg.RetryOnFailure,
	}
}

// Orchestrate resolves the request against the active policy and invokes
// the selected provider. With failover enabled it walks the remaining
// candidates on failure, capped at one attempt per candidate; an explicit
// provider override never fails over. Every attempt is recorded in the
// invocation log.
func (s *OrchestrationService) Orchestrate(ctx context.Context, req *v1alpha1.OrchestrateRequest) (*v1alpha1.OrchestrateResponse, error) {
	if len(req.Payload) == 0 {
		return nil, NewValidationError("payload must not be empty")
	}

	var override *model.Provider
	if req.Provider != nil {
		provider, err := model.ParseProvider(*req.Provider)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		override = &provider
	}

	policy, err := s.store.Policy().GetActive(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoActivePolicy) {
			return nil, NewNoActivePolicyError("no routing policy is active")
		}
		return nil, NewInternalError(fmt.Sprintf("failed to load active policy: %v", err))
	}

	candidates, err := s.resolver.Route(policy, override)
	if err != nil {
		if errors.Is(err, router.ErrNoProviderTarget) {
			return nil, NewNoProviderTargetError(err.Error())
		}
		return nil, NewInternalError(fmt.Sprintf("failed to resolve provider: %v", err))
	}

	var result *invoker.Result
	attempts := 0
	for _, candidate := range candidates {
		attempts++
		result = s.invoker.Invoke(ctx, candidate.Provider, candidate.Target, req.Target, req.Payload)
		s.recordInvocation(ctx, policy.Name, req, result)

		if result.Success() || !s.retryOnFailure {
			break
		}
		if attempts < len(candidates) {
			log.Infof("Invocation via %s failed (%s), failing over to next candidate", candidate.Provider, result.ErrorKind)
		}
	}

	response := &v1alpha1.OrchestrateResponse{
		ProviderUsed: result.Provider.String(),
		Status:       result.Status,
		LatencyMs:    result.LatencyMs,
		Response:     result.Response,
		Attempts:     attempts,
	}
	if result.ErrorKind != "" {
		kind := string(result.ErrorKind)
		response.ErrorKind = &kind
	}
	return response, nil
}

// recordInvocation appends one attempt to the persisted invocation log.
// Logging failures must not fail the request.
func (s *OrchestrationService) recordInvocation(ctx context.Context, policyName string, req *v1alpha1.OrchestrateRequest, result *invoker.Result) {
	row := model.Invocation{
		ID:         uuid.New(),
		PolicyName: policyName,
		Provider:   result.Provider,
		Target:     result.Target,
		Status:     result.Status,
		ErrorKind:  string(result.ErrorKind),
		LatencyMs:  result.LatencyMs,
		Payload:    datatypes.JSON(req.Payload),
	}
	if _, err := s.store.Invocation().Create(ctx, row); err != nil {
		log.Warnf("Failed to record invocation for provider %s: %v", result.Provider, err)
	}
}

// ListInvocations returns recent invocation log entries, newest first.
func (s *OrchestrationService) ListInvocations(ctx context.Context, providerName, status *string, limit, offset int) (*v1alpha1.InvocationList, error) {
	if limit < 0 || offset < 0 {
		return nil, NewValidationError("limit and offset must not be negative")
	}
	if limit == 0 {
		limit = defaultInvocationPageSize
	}
	if limit > maxInvocationPageSize {
		limit = maxInvocationPageSize
	}

	filter := &store.InvocationFilter{}
	if providerName != nil && *providerName != "" {
		provider, err := model.ParseProvider(*providerName)
		if err != nil {
			return nil, NewValidationError(err.Error())
		}
		filter.Provider = &provider
	}
	if status != nil && *status != "" {
		if *status != model.InvocationSuccess && *status != model.InvocationFailure {
			return nil, NewValidationError(fmt.Sprintf("unknown status %q", *status))
		}
		filter.Status = status
	}

	total, err := s.store.Invocation().Count(ctx, filter)
	if err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to count invocations: %v", err))
	}

	invocations, err := s.store.Invocation().List(ctx, filter, &store.Pagination{Limit: limit, Offset: offset})
	if err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to list invocations: %v", err))
	}

	result := make([]v1alpha1.Invocation, len(invocations))
	for i := range invocations {
		result[i] = *ModelToInvocation(&invocations[i])
	}
	return &v1alpha1.InvocationList{Invocations: result, Total: total}, nil
}

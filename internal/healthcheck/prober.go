package healthcheck

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dcm-project/orchestration-router/internal/config"
	"github.com/dcm-project/orchestration-router/internal/store"
	"github.com/dcm-project/orchestration-router/internal/store/model"
	"github.com/puzpuzpuz/xsync/v4"
	log "github.com/sirupsen/logrus"
)

// Prober tracks per-provider endpoint health. It runs probes on a fixed
// interval in the background, and also folds in outcomes reported by the
// invoker, so routing decisions never pay probe latency.
type Prober struct {
	store                  store.Policy
	httpClient             *http.Client
	interval               time.Duration
	healthPath             string
	maxConsecutiveFailures int
	degradedLatency        time.Duration
	states                 *xsync.Map[model.Provider, *providerState]
	stopCh                 chan struct{}
	wg                     sync.WaitGroup
}

type providerState struct {
	mu     sync.Mutex
	health ProviderHealth
}

// NewProber creates a health prober over the providers referenced by the
// stored policies.
func NewProber(policyStore store.Policy, cfg *config.HealthCheckConfig) *Prober {
	p := &Prober{
		store: policyStore,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		interval:               cfg.Interval,
		healthPath:             cfg.Path,
		maxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		degradedLatency:        cfg.DegradedLatency,
		states:                 xsync.NewMap[model.Provider, *providerState](),
		stopCh:                 make(chan struct{}),
	}
	for _, provider := range model.Providers() {
		p.states.Store(provider, &providerState{
			health: ProviderHealth{Provider: provider, Status: StatusUnknown},
		})
	}
	return p
}

// Start begins the background probe loop.
func (p *Prober) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.run(ctx)
}

// Stop gracefully stops the probe loop.
func (p *Prober) Stop() {
	close(p.stopCh)
	p.wg.Wait()
}

func (p *Prober) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Run immediately on start
	p.CheckProviders(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.CheckProviders(ctx)
		}
	}
}

// CheckProviders probes every provider that has a probeable target.
func (p *Prober) CheckProviders(ctx context.Context) {
	targets, err := p.probeTargets(ctx)
	if err != nil {
		log.Errorf("Error listing policies for health check: %v", err)
		return
	}

	for provider, target := range targets {
		select {
		case <-ctx.Done():
			return
		default:
			p.probe(ctx, provider, target)
		}
	}
}

// probeTargets resolves one target per provider: the active policy's target
// wins, otherwise the first policy in creation order that configures one.
// Non-HTTP targets (e.g. bare ARNs) cannot be probed and are skipped; their
// providers stay in their last-known state.
func (p *Prober) probeTargets(ctx context.Context) (map[model.Provider]string, error) {
	policies, err := p.store.List(ctx)
	if err != nil {
		return nil, err
	}

	targets := make(map[model.Provider]string)
	assign := func(policy *model.Policy, overwrite bool) {
		for _, provider := range policy.ConfiguredProviders() {
			target := policy.Target(provider)
			if !isProbeable(target) {
				continue
			}
			if _, seen := targets[provider]; !seen || overwrite {
				targets[provider] = target
			}
		}
	}
	for i := range policies {
		assign(&policies[i], false)
	}
	for i := range policies {
		if policies[i].IsActive {
			assign(&policies[i], true)
		}
	}
	return targets, nil
}

func isProbeable(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

func (p *Prober) probe(ctx context.Context, provider model.Provider, target string) {
	healthURL := strings.TrimRight(target, "/") + p.healthPath

	start := time.Now()
	ok := p.performProbe(ctx, provider, healthURL)
	latency := time.Since(start)

	if ok {
		p.recordSuccess(provider, latency)
	} else {
		p.recordFailure(provider)
	}
}

func (p *Prober) performProbe(ctx context.Context, provider model.Provider, healthURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		log.Errorf("Error creating health check request for provider %s: %v", provider, err)
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Debugf("Health check failed for provider %s: %v", provider, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true
	}

	log.Debugf("Health check failed for provider %s: status code %d", provider, resp.StatusCode)
	return false
}

// ReportOutcome folds a synchronous invocation result into the same health
// signal maintained by background probes.
func (p *Prober) ReportOutcome(provider model.Provider, success bool, latency time.Duration) {
	if success {
		p.recordSuccess(provider, latency)
	} else {
		p.recordFailure(provider)
	}
}

// recordSuccess applies the optimistic recovery rule: a single success
// returns a provider to healthy and resets the failure counter. A slow
// success marks the provider degraded instead.
func (p *Prober) recordSuccess(provider model.Provider, latency time.Duration) {
	p.update(provider, func(h *ProviderHealth) {
		newStatus := StatusHealthy
		if p.degradedLatency > 0 && latency > p.degradedLatency {
			newStatus = StatusDegraded
		}
		p.logTransition(h, newStatus)
		h.Status = newStatus
		h.ConsecutiveFailures = 0
		h.LastCheckedAt = time.Now()
		ms := latency.Milliseconds()
		h.LastLatencyMs = &ms
	})
}

func (p *Prober) recordFailure(provider model.Provider) {
	p.update(provider, func(h *ProviderHealth) {
		h.ConsecutiveFailures++
		newStatus := StatusDegraded
		if h.ConsecutiveFailures >= p.maxConsecutiveFailures {
			newStatus = StatusUnhealthy
		}
		p.logTransition(h, newStatus)
		h.Status = newStatus
		h.LastCheckedAt = time.Now()
		h.LastLatencyMs = nil
	})
}

func (p *Prober) logTransition(h *ProviderHealth, newStatus Status) {
	if h.Status != newStatus {
		log.Infof("Provider %s health status changed: %s -> %s", h.Provider, h.Status, newStatus)
	}
}

func (p *Prober) update(provider model.Provider, apply func(*ProviderHealth)) {
	state, ok := p.states.Load(provider)
	if !ok {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	apply(&state.health)
}

// Status returns the last-known health of a provider without probing.
func (p *Prober) Status(provider model.Provider) ProviderHealth {
	state, ok := p.states.Load(provider)
	if !ok {
		return ProviderHealth{Provider: provider, Status: StatusUnknown}
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.health
}

// Snapshot returns the health of all providers in the fixed provider order.
func (p *Prober) Snapshot() []ProviderHealth {
	snapshot := make([]ProviderHealth, 0, len(model.Providers()))
	for _, provider := range model.Providers() {
		snapshot = append(snapshot, p.Status(provider))
	}
	return snapshot
}

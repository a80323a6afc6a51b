package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/dcm-project/orchestration-router/internal/config"
	"github.com/dcm-project/orchestration-router/internal/store/model"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// ErrorKind classifies a failed invocation. Transport errors are never
// propagated raw; they are normalized into one of these kinds.
type ErrorKind string

const (
	ErrorKindTimeout           ErrorKind = "timeout"
	ErrorKindConnectionRefused ErrorKind = "connection_refused"
	ErrorKindProviderError     ErrorKind = "provider_error"
	ErrorKindUnknown           ErrorKind = "unknown"
)

// TargetHeader carries the logical function name to the provider endpoint.
const TargetHeader = "X-Orchestration-Target"

// Result is the normalized outcome of one outbound call, uniform across
// providers.
type Result struct {
	Provider  model.Provider
	Target    string
	Status    string
	LatencyMs int64
	Response  json.RawMessage
	ErrorKind ErrorKind
}

// Success reports whether the call succeeded.
func (r *Result) Success() bool {
	return r.Status == model.InvocationSuccess
}

// HealthReporter receives invocation outcomes so that synchronous failures
// feed the same health signal as background probes.
type HealthReporter interface {
	ReportOutcome(provider model.Provider, success bool, latency time.Duration)
}

// Invoker performs the outbound call to a resolved provider endpoint.
// It never retries; failover is the orchestration layer's decision.
type Invoker struct {
	client   *resty.Client
	reporter HealthReporter
}

func New(cfg *config.RouterConfig, reporter HealthReporter) *Invoker {
	client := resty.New().
		SetTimeout(cfg.InvokeTimeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")

	return &Invoker{
		client:   client,
		reporter: reporter,
	}
}

// Invoke POSTs the payload to the target and normalizes the outcome. The
// logical function name, when present, travels in a request header so the
// receiving endpoint can dispatch on it.
func (i *Invoker) Invoke(ctx context.Context, provider model.Provider, target, logicalTarget string, payload json.RawMessage) *Result {
	req := i.client.R().
		SetContext(ctx).
		SetBody([]byte(payload))
	if logicalTarget != "" {
		req.SetHeader(TargetHeader, logicalTarget)
	}

	start := time.Now()
	resp, err := req.Post(target)
	latency := time.Since(start)

	result := &Result{
		Provider:  provider,
		Target:    target,
		LatencyMs: latency.Milliseconds(),
	}

	switch {
	case err != nil:
		result.Status = model.InvocationFailure
		result.ErrorKind = classify(err)
		log.Warnf("Invocation failed for provider %s (target %s): %s: %v", provider, target, result.ErrorKind, err)
	case resp.IsSuccess():
		result.Status = model.InvocationSuccess
		result.Response = json.RawMessage(resp.Body())
	default:
		result.Status = model.InvocationFailure
		result.ErrorKind = ErrorKindProviderError
		result.Response = json.RawMessage(resp.Body())
		log.Warnf("Invocation failed for provider %s (target %s): status code %d", provider, target, resp.StatusCode())
	}

	i.reporter.ReportOutcome(provider, result.Success(), latency)
	return result
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorKindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrorKindConnectionRefused
	}
	return ErrorKindUnknown
}

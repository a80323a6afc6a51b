package invoker_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/dcm-project/orchestration-router/internal/config"
	"github.com/dcm-project/orchestration-router/internal/invoker"
	"github.com/dcm-project/orchestration-router/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// recordingReporter captures outcomes reported to the health signal.
type recordingReporter struct {
	mu       sync.Mutex
	outcomes []reportedOutcome
}

type reportedOutcome struct {
	Provider model.Provider
	Success  bool
}

func (r *recordingReporter) ReportOutcome(provider model.Provider, success bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, reportedOutcome{Provider: provider, Success: success})
}

func (r *recordingReporter) last() reportedOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	Expect(r.outcomes).NotTo(BeEmpty())
	return r.outcomes[len(r.outcomes)-1]
}

var _ = Describe("Invoker", func() {
	var (
		reporter *recordingReporter
		inv      *invoker.Invoker
		ctx      context.Context
	)

	BeforeEach(func() {
		reporter = &recordingReporter{}
		inv = invoker.New(&config.RouterConfig{InvokeTimeout: 500 * time.Millisecond}, reporter)
		ctx = context.Background()
	})

	Context("with a successful provider", func() {
		It("returns a success result with the response body", func() {
			var receivedBody []byte
			var receivedTarget string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				receivedBody, _ = io.ReadAll(r.Body)
				receivedTarget = r.Header.Get(invoker.TargetHeader)
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"result":"ok"}`))
			}))
			defer server.Close()

			result := inv.Invoke(ctx, model.ProviderAWS, server.URL, "resize-image", json.RawMessage(`{"x":1}`))

			Expect(result.Success()).To(BeTrue())
			Expect(result.Status).To(Equal(model.InvocationSuccess))
			Expect(result.ErrorKind).To(BeEmpty())
			Expect(string(result.Response)).To(Equal(`{"result":"ok"}`))
			Expect(result.LatencyMs).To(BeNumerically(">=", 0))
			Expect(string(receivedBody)).To(Equal(`{"x":1}`))
			Expect(receivedTarget).To(Equal("resize-image"))

			Expect(reporter.last().Success).To(BeTrue())
			Expect(reporter.last().Provider).To(Equal(model.ProviderAWS))
		})
	})

	Context("with a provider returning 5xx", func() {
		It("normalizes to provider_error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"boom"}`))
			}))
			defer server.Close()

			result := inv.Invoke(ctx, model.ProviderAzure, server.URL, "", json.RawMessage(`{}`))

			Expect(result.Success()).To(BeFalse())
			Expect(result.ErrorKind).To(Equal(invoker.ErrorKindProviderError))
			Expect(string(result.Response)).To(Equal(`{"error":"boom"}`))
			Expect(reporter.last().Success).To(BeFalse())
		})
	})

	Context("with a hanging provider", func() {
		It("normalizes to timeout", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(2 * time.Second)
			}))
			defer server.Close()

			result := inv.Invoke(ctx, model.ProviderGCP, server.URL, "", json.RawMessage(`{}`))

			Expect(result.Success()).To(BeFalse())
			Expect(result.ErrorKind).To(Equal(invoker.ErrorKindTimeout))
			Expect(reporter.last().Success).To(BeFalse())
		})
	})

	Context("with an unreachable provider", func() {
		It("normalizes to connection_refused", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			target := server.URL
			server.Close()

			result := inv.Invoke(ctx, model.ProviderAWS, target, "", json.RawMessage(`{}`))

			Expect(result.Success()).To(BeFalse())
			Expect(result.ErrorKind).To(Equal(invoker.ErrorKindConnectionRefused))
			Expect(reporter.last().Success).To(BeFalse())
		})
	})
})

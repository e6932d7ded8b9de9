package gateway

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/flemzord/relaychat/internal/provider"
)

// Metrics holds the gateway's Prometheus collectors on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	turns     prometheus.Counter
	errors    *prometheus.CounterVec
	inference prometheus.Histogram
}

// NewMetrics creates and registers the gateway collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relaychat_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		turns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relaychat_chat_turns_total",
			Help: "Completed chat turns.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relaychat_errors_total",
			Help: "Failed chat or clear operations by error kind.",
		}, []string{"kind"}),
		inference: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "relaychat_inference_duration_seconds",
			Help:    "Latency of inference calls, successful or not.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.turns,
		m.errors,
		m.inference,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// trackSessions exports the live session count reported by fn.
func (m *Metrics) trackSessions(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "relaychat_live_sessions",
		Help: "Sessions held in memory.",
	}, func() float64 { return float64(fn()) }))
}

// instrument wraps p so every Complete call is timed.
func (m *Metrics) instrument(p provider.Provider) provider.Provider {
	return &timedProvider{Provider: p, hist: m.inference}
}

type timedProvider struct {
	provider.Provider
	hist prometheus.Histogram
}

func (t *timedProvider) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	start := time.Now()
	resp, err := t.Provider.Complete(ctx, req)
	t.hist.Observe(time.Since(start).Seconds())
	return resp, err
}

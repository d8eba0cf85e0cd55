package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess       = "success"
	OutcomeModelNotFound = "model_not_found"
	OutcomeError         = "error"

	OutcomeSucceeded     = "succeeded"
	OutcomePartial       = "partial"
	OutcomeNoIngredients = "no_ingredients"
	OutcomeFailed        = "failed"
	OutcomeSuperseded    = "superseded"
)

// Metrics holds the collectors for one process, registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	ModelFallbacks   prometheus.Counter
	Generations      *prometheus.CounterVec
	Attempts         prometheus.Histogram
	Duration         prometheus.Histogram
	QueueLength      prometheus.GaugeFunc
}

// New creates and registers all collectors. queueLen may be nil.
func New(queueLen func() float64) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fridge_upstream_requests_total",
			Help: "Upstream model requests by model and outcome.",
		}, []string{"model", "outcome"}),
		ModelFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fridge_model_fallbacks_total",
			Help: "Times the invoker advanced to a fallback model.",
		}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fridge_suggestion_generations_total",
			Help: "Suggestion generations by outcome.",
		}, []string{"outcome"}),
		Attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fridge_suggestion_attempts",
			Help:    "Pipeline attempts per generation.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fridge_suggestion_duration_seconds",
			Help:    "Wall time of a suggestion generation.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
	}
	registry.MustRegister(m.UpstreamRequests, m.ModelFallbacks, m.Generations, m.Attempts, m.Duration)

	if queueLen != nil {
		m.QueueLength = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "fridge_upstream_queue_length",
			Help: "Requests waiting for an upstream worker.",
		}, queueLen)
		registry.MustRegister(m.QueueLength)
	}

	return m
}

// Registry exposes the private registry (tests, custom handlers).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveUpstream(model, outcome string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(model, outcome).Inc()
}

func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.ModelFallbacks.Inc()
}

// ObserveGeneration records one finished generation.
func (m *Metrics) ObserveGeneration(outcome string, attempts int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(outcome).Inc()
	if attempts > 0 {
		m.Attempts.Observe(float64(attempts))
	}
	m.Duration.Observe(elapsed.Seconds())
}

package metrics

import (
	"time"

	"fare-rules-worker/internal/application/port/output"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ output.MetricsPort = (*Recorder)(nil)

type Recorder struct {
	llmCallLatency   *prometheus.HistogramVec
	classifications  *prometheus.CounterVec
	tasksFetched     *prometheus.CounterVec
	fetchErrors      *prometheus.CounterVec
	completionErrors *prometheus.CounterVec
}

// NewRecorder registers the worker metrics on reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		llmCallLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_call_latency_ms",
				Help:    "Text generation call latency in milliseconds",
				Buckets: prometheus.ExponentialBuckets(50, 2, 10), // 50ms to ~25s
			},
			[]string{"backend", "status"},
		),
		classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fare_rule_classifications_total",
				Help: "Fare rule classifications by reported category",
			},
			[]string{"category", "path"}, // path: model, fallback, error
		),
		tasksFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_tasks_fetched_total",
				Help: "External tasks locked by this worker",
			},
			[]string{"topic"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_task_fetch_errors_total",
				Help: "Failed fetch and lock requests",
			},
			[]string{"topic"},
		),
		completionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_task_completion_errors_total",
				Help: "Tasks whose completion could not be reported",
			},
			[]string{"topic"},
		),
	}
}

func (r *Recorder) ObserveLLMCall(backend, status string, duration time.Duration) {
	r.llmCallLatency.WithLabelValues(backend, status).Observe(float64(duration.Milliseconds()))
}

func (r *Recorder) IncClassification(category, path string) {
	r.classifications.WithLabelValues(category, path).Inc()
}

func (r *Recorder) IncTasksFetched(topic string, count int) {
	r.tasksFetched.WithLabelValues(topic).Add(float64(count))
}

func (r *Recorder) IncFetchError(topic string) {
	r.fetchErrors.WithLabelValues(topic).Inc()
}

func (r *Recorder) IncCompletionError(topic string) {
	r.completionErrors.WithLabelValues(topic).Inc()
}

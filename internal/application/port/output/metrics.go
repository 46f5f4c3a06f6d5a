package output

import "time"

type MetricsPort interface {
	ObserveLLMCall(backend, status string, duration time.Duration)
	IncClassification(category, path string)
	IncTasksFetched(topic string, count int)
	IncFetchError(topic string)
	IncCompletionError(topic string)
}

type NopMetrics struct{}

func (NopMetrics) ObserveLLMCall(string, string, time.Duration) {}
func (NopMetrics) IncClassification(string, string)             {}
func (NopMetrics) IncTasksFetched(string, int)                  {}
func (NopMetrics) IncFetchError(string)                         {}
func (NopMetrics) IncCompletionError(string)                    {}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobmatcher"

// Metrics groups the collectors of a collection run. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Searches        *prometheus.CounterVec
	PostingsSkipped *prometheus.CounterVec
	Matches         prometheus.Counter
	JobsStored      prometheus.Counter
	StoreWrites     *prometheus.CounterVec
	RunDuration     prometheus.Histogram
}

// New registers the collectors on a fresh registry together with the Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Searches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of job searches by outcome",
			},
			[]string{"outcome"},
		),
		PostingsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "postings_skipped_total",
				Help:      "Total number of postings dropped by filters",
			},
			[]string{"filter"},
		),
		Matches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Total number of postings matched to a resume",
		}),
		JobsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_stored_total",
			Help:      "Total number of matched jobs written to the store",
		}),
		StoreWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_writes_total",
				Help:      "Total number of batch writes by result",
			},
			[]string{"result"},
		),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full collection run in seconds",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
		}),
	}
}

func (m *Metrics) Search(outcome string) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Skipped(filter string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PostingsSkipped.WithLabelValues(filter).Add(float64(n))
}

func (m *Metrics) Matched() {
	if m == nil {
		return
	}
	m.Matches.Inc()
}

func (m *Metrics) Stored(n int) {
	if m == nil {
		return
	}
	m.StoreWrites.WithLabelValues("ok").Inc()
	m.JobsStored.Add(float64(n))
}

func (m *Metrics) StoreFailed() {
	if m == nil {
		return
	}
	m.StoreWrites.WithLabelValues("error").Inc()
}

func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

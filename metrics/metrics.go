// Package metrics provides Prometheus instrumentation for mutablestream.
//
// A Collector implements mutablestream.Observer. Install it using mutablestream.Configure:
//
//	collector := metrics.New(prometheus.DefaultRegisterer, "myapp")
//	mutablestream.Configure(mutablestream.WithObserver(collector))
package metrics

import (
	"strconv"
	"time"

	"github.com/deadlyengineer/mutablestream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Collector holds the metrics of executed stream pipelines.
type Collector struct {
	TerminalOperations *prometheus.CounterVec
	TerminalDuration   *prometheus.HistogramVec
	Closes             *prometheus.CounterVec
	ClosedResources    prometheus.Counter
}

var _ mutablestream.Observer = (*Collector)(nil)

// New creates a new Collector, and registers its metrics with reg.
// If namespace is empty, "mutablestream" is used.
func New(reg prometheus.Registerer, namespace string) *Collector {
	if namespace == "" {
		namespace = "mutablestream"
	}

	factory := promauto.With(reg)

	return &Collector{
		TerminalOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "terminal_operations_total",
				Help:      "Total number of executed terminal operations",
			},
			[]string{"terminal", "parallel", "outcome"},
		),

		TerminalDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "terminal_duration_seconds",
				Help:      "Time spent executing terminal operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"terminal"},
		),

		Closes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "closes_total",
				Help:      "Total number of auto-closing stream releases",
			},
			[]string{"outcome"},
		),

		ClosedResources: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "closed_resources_total",
				Help:      "Total number of resources released by auto-closing streams",
			},
		),
	}
}

// TerminalCompleted implements mutablestream.Observer.
func (c *Collector) TerminalCompleted(kind mutablestream.TerminalKind, parallel bool, elapsed time.Duration, err error) {
	terminal := kind.String()

	c.TerminalOperations.WithLabelValues(terminal, strconv.FormatBool(parallel), outcome(err)).Inc()
	c.TerminalDuration.WithLabelValues(terminal).Observe(elapsed.Seconds())
}

// ResourcesClosed implements mutablestream.Observer.
func (c *Collector) ResourcesClosed(count int, err error) {
	c.Closes.WithLabelValues(outcome(err)).Inc()
	c.ClosedResources.Add(float64(count))
}

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}

	return outcomeSuccess
}

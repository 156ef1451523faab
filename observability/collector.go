package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/assetstream"
)

// Collector implements assetstream.MetricsCollector on Prometheus metrics.
type Collector struct {
	passLatency     *prometheus.HistogramVec
	passes          *prometheus.CounterVec
	activated       prometheus.Counter
	evicted         prometheus.Counter
	blockingLatency prometheus.Histogram
	blocking        *prometheus.CounterVec
	consumed        prometheus.Gauge
	budget          prometheus.Gauge
}

var _ assetstream.MetricsCollector = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
// namespace prefixes every metric name and may be empty.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	c := &Collector{
		passLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assetstream_pass_duration_seconds",
			Help:      "Latency of residency passes",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"status"}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assetstream_passes_total",
			Help:      "Residency passes by outcome",
		}, []string{"status"}),
		activated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assetstream_activated_total",
			Help:      "Assets handed to the instantiator",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assetstream_evicted_total",
			Help:      "Assets released to stay under budget",
		}),
		blockingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assetstream_blocking_duration_seconds",
			Help:      "Latency of blocking single-asset requests",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		blocking: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assetstream_blocking_total",
			Help:      "Blocking requests by outcome",
		}, []string{"status"}),
		consumed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "assetstream_consumed_bytes",
			Help:      "Aggregate cost charged against the budget",
		}),
		budget: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "assetstream_budget_bytes",
			Help:      "Configured residency budget",
		}),
	}

	reg.MustRegister(
		c.passLatency,
		c.passes,
		c.activated,
		c.evicted,
		c.blockingLatency,
		c.blocking,
		c.consumed,
		c.budget,
	)
	return c
}

// RecordIteration implements assetstream.MetricsCollector.
func (c *Collector) RecordIteration(d time.Duration, activated, evicted int, skipped bool) {
	status := "completed"
	if skipped {
		status = "skipped"
	}
	c.passLatency.WithLabelValues(status).Observe(d.Seconds())
	c.passes.WithLabelValues(status).Inc()
	c.activated.Add(float64(activated))
	c.evicted.Add(float64(evicted))
}

// RecordBlocking implements assetstream.MetricsCollector.
func (c *Collector) RecordBlocking(d time.Duration, admitted bool) {
	status := "admitted"
	if !admitted {
		status = "resident"
	}
	c.blockingLatency.Observe(d.Seconds())
	c.blocking.WithLabelValues(status).Inc()
}

// RecordConsumed implements assetstream.MetricsCollector.
func (c *Collector) RecordConsumed(total, budget uint64) {
	c.consumed.Set(float64(total))
	c.budget.Set(float64(budget))
}

// Package metrics defines the Prometheus collectors for probing, ranking and fetching.
//
// A nil *Metrics is valid and records nothing, so library packages can take
// one unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "smartgw"

// Fixed buckets so dashboards survive upgrades. Probes are bounded by the
// configured timeout, which defaults to 3s.
var probeBuckets = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10}

// Metrics holds every collector the picker exports.
type Metrics struct {
	probes          *prometheus.CounterVec
	probeDuration   prometheus.Histogram
	rounds          *prometheus.CounterVec
	retries         prometheus.Counter
	availableGauge  prometheus.Gauge
	pickedChanges   prometheus.Counter
	fetches         *prometheus.CounterVec
	fetchAttempts   *prometheus.CounterVec
	cacheHits       prometheus.Counter
	storageFailures *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration, which is what tests usually want.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prober",
			Name:      "probes_total",
			Help:      "Latency probes by result (available, unreachable).",
		}, []string{"result"}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "prober",
			Name:      "probe_duration_seconds",
			Help:      "Time to first response headers for successful probes.",
			Buckets:   probeBuckets,
		}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "rounds_total",
			Help:      "Completed ranking rounds by outcome (ranked, empty, cancelled).",
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "retry_waits_total",
			Help:      "Waits between attempts after every gateway failed.",
		}),
		availableGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "available_gateways",
			Help:      "Gateways in the latest ranked list.",
		}),
		pickedChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "picked_changes_total",
			Help:      "Times the picked gateway was set.",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "fetches_total",
			Help:      "Fetch operations by mode (fallback, picked) and result (ok, failed).",
		}, []string{"mode", "result"}),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "attempts_total",
			Help:      "Per-gateway fetch attempts by result (ok, unreachable, status, decode).",
		}, []string{"result"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "cache_hits_total",
			Help:      "Fetches served from the content cache.",
		}),
		storageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "failures_total",
			Help:      "Persistent store failures by kind (read, write, corrupt).",
		}, []string{"kind"}),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.probes, m.probeDuration, m.rounds, m.retries, m.availableGauge,
		m.pickedChanges, m.fetches, m.fetchAttempts, m.cacheHits, m.storageFailures,
	}
}

// ObserveProbe records one probe outcome.
func (m *Metrics) ObserveProbe(ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	if ok {
		m.probes.WithLabelValues("available").Inc()
		m.probeDuration.Observe(elapsed.Seconds())
		return
	}
	m.probes.WithLabelValues("unreachable").Inc()
}

// ObserveRound records a finished round and the size of its ranked list.
func (m *Metrics) ObserveRound(outcome string, available int) {
	if m == nil {
		return
	}
	m.rounds.WithLabelValues(outcome).Inc()
	m.availableGauge.Set(float64(available))
}

// ObserveRetry counts one wait between attempts.
func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// ObservePickedChange counts an update of the picked gateway.
func (m *Metrics) ObservePickedChange() {
	if m == nil {
		return
	}
	m.pickedChanges.Inc()
}

// ObserveFetch records a finished fetch operation.
func (m *Metrics) ObserveFetch(mode string, ok bool) {
	if m == nil {
		return
	}
	result := "failed"
	if ok {
		result = "ok"
	}
	m.fetches.WithLabelValues(mode, result).Inc()
}

// ObserveFetchAttempt records the outcome of trying one gateway.
func (m *Metrics) ObserveFetchAttempt(result string) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(result).Inc()
}

// ObserveCacheHit counts a fetch served from the content cache.
func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// ObserveStorageFailure counts a persistent store failure.
func (m *Metrics) ObserveStorageFailure(kind string) {
	if m == nil {
		return
	}
	m.storageFailures.WithLabelValues(kind).Inc()
}

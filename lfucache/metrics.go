/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package lfucache

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollector represents a collector of metrics to analyze how (effectively or not) cache is used.
type MetricsCollector interface {
	// SetAmount sets the total number of entries in the cache.
	SetAmount(int)

	// IncHits increments the total number of successfully found keys in the cache.
	IncHits()

	// IncMisses increments the total number of not found keys in the cache.
	IncMisses()

	// ObserveEviction is called for every evicted entry with its use count at the moment of eviction.
	ObserveEviction(useCount int)
}

// DefaultEvictedUseCountBuckets is the default set of buckets for the histogram of use counts of evicted entries.
var DefaultEvictedUseCountBuckets = prometheus.ExponentialBuckets(1, 2, 12)

// PrometheusMetricsOpts represents options for PrometheusMetrics.
type PrometheusMetricsOpts struct {
	// Namespace is a namespace for metrics. It will be prepended to all metric names.
	Namespace string

	// ConstLabels is a set of labels that will be applied to all metrics.
	ConstLabels prometheus.Labels

	// CurriedLabelNames is a list of label names that will be curried with the provided labels.
	// PrometheusMetrics.MustCurryWith must be called with the same labels before the collector is used.
	CurriedLabelNames []string

	// EvictedUseCountBuckets overrides DefaultEvictedUseCountBuckets.
	EvictedUseCountBuckets []float64
}

// PrometheusMetrics represents a Prometheus metrics for the cache.
type PrometheusMetrics struct {
	EntriesAmount    *prometheus.GaugeVec
	HitsTotal        *prometheus.CounterVec
	MissesTotal      *prometheus.CounterVec
	EvictionsTotal   *prometheus.CounterVec
	EvictedUseCounts prometheus.ObserverVec
}

var _ MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a new instance of PrometheusMetrics with default options.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{})
}

// NewPrometheusMetricsWithOpts creates a new instance of PrometheusMetrics with the provided options.
func NewPrometheusMetricsWithOpts(opts PrometheusMetricsOpts) *PrometheusMetrics {
	useCountBuckets := opts.EvictedUseCountBuckets
	if len(useCountBuckets) == 0 {
		useCountBuckets = DefaultEvictedUseCountBuckets
	}
	return &PrometheusMetrics{
		EntriesAmount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   opts.Namespace,
			Name:        "lfu_cache_entries_amount",
			Help:        "Total number of entries in the LFU cache.",
			ConstLabels: opts.ConstLabels,
		}, opts.CurriedLabelNames),
		HitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "lfu_cache_hits_total",
			Help:        "Number of successfully found keys in the LFU cache.",
			ConstLabels: opts.ConstLabels,
		}, opts.CurriedLabelNames),
		MissesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "lfu_cache_misses_total",
			Help:        "Number of not found keys in the LFU cache.",
			ConstLabels: opts.ConstLabels,
		}, opts.CurriedLabelNames),
		EvictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Name:        "lfu_cache_evictions_total",
			Help:        "Number of entries evicted from the LFU cache.",
			ConstLabels: opts.ConstLabels,
		}, opts.CurriedLabelNames),
		EvictedUseCounts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   opts.Namespace,
			Name:        "lfu_cache_evicted_use_count",
			Help:        "Use counts of entries at the moment of their eviction from the LFU cache.",
			ConstLabels: opts.ConstLabels,
			Buckets:     useCountBuckets,
		}, opts.CurriedLabelNames),
	}
}

// MustCurryWith curries the metrics collector with the provided labels.
func (pm *PrometheusMetrics) MustCurryWith(labels prometheus.Labels) *PrometheusMetrics {
	return &PrometheusMetrics{
		EntriesAmount:    pm.EntriesAmount.MustCurryWith(labels),
		HitsTotal:        pm.HitsTotal.MustCurryWith(labels),
		MissesTotal:      pm.MissesTotal.MustCurryWith(labels),
		EvictionsTotal:   pm.EvictionsTotal.MustCurryWith(labels),
		EvictedUseCounts: pm.EvictedUseCounts.MustCurryWith(labels),
	}
}

func (pm *PrometheusMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		pm.EntriesAmount, pm.HitsTotal, pm.MissesTotal, pm.EvictionsTotal, pm.EvictedUseCounts,
	}
}

// MustRegister does registration of metrics collector in Prometheus default registry and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegister() {
	pm.MustRegisterIn(prometheus.DefaultRegisterer)
}

// MustRegisterIn does registration of metrics collector in the given registerer and panics if any error occurs.
func (pm *PrometheusMetrics) MustRegisterIn(reg prometheus.Registerer) {
	reg.MustRegister(pm.collectors()...)
}

// Unregister cancels registration of metrics collector in Prometheus default registry.
func (pm *PrometheusMetrics) Unregister() {
	for _, c := range pm.collectors() {
		prometheus.Unregister(c)
	}
}

// SetAmount sets the total number of entries in the cache.
func (pm *PrometheusMetrics) SetAmount(amount int) {
	pm.EntriesAmount.With(nil).Set(float64(amount))
}

// IncHits increments the total number of successfully found keys in the cache.
func (pm *PrometheusMetrics) IncHits() {
	pm.HitsTotal.With(nil).Inc()
}

// IncMisses increments the total number of not found keys in the cache.
func (pm *PrometheusMetrics) IncMisses() {
	pm.MissesTotal.With(nil).Inc()
}

// ObserveEviction increments the total number of evicted entries and records the use count of the evicted one.
func (pm *PrometheusMetrics) ObserveEviction(useCount int) {
	pm.EvictionsTotal.With(nil).Inc()
	pm.EvictedUseCounts.With(nil).Observe(float64(useCount))
}

type disabledMetrics struct{}

func (disabledMetrics) SetAmount(int)       {}
func (disabledMetrics) IncHits()            {}
func (disabledMetrics) IncMisses()          {}
func (disabledMetrics) ObserveEviction(int) {}

var disabledMetricsCollector = disabledMetrics{}

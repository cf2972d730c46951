// Package metrics wires Prometheus counters/gauges for the lookup and
// WHOIS-cache paths: construct once, register with the default
// registry, tolerate double-registration rather than panicking so tests
// can build a fresh Registry without a shared global.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry groups the tool's counters/gauges:
// lookups_total{outcome}, breaker_trips_total, whois_cache_hits_total,
// whois_cache_misses_total, resolver_inflight.
type Registry struct {
	LookupsTotal          *prometheus.CounterVec
	BreakerTripsTotal     prometheus.Counter
	WhoisCacheHitsTotal   prometheus.Counter
	WhoisCacheMissesTotal prometheus.Counter
	ResolverInflight      prometheus.Gauge
}

// New builds a Registry and registers its collectors against reg.
// Passing nil uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Registry{
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mhost_lookups_total",
				Help: "DNS lookups issued, labelled by outcome kind (response, nxdomain, timeout, error).",
			},
			[]string{"outcome"},
		),
		BreakerTripsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mhost_breaker_trips_total",
			Help: "Bounded-concurrency streams that stopped pulling further work because their breaker predicate fired.",
		}),
		WhoisCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mhost_whois_cache_hits_total",
			Help: "WHOIS queries served from the CIDR-block cache.",
		}),
		WhoisCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mhost_whois_cache_misses_total",
			Help: "WHOIS queries that missed the cache and reached the stat-service.",
		}),
		ResolverInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mhost_resolver_inflight",
			Help: "Resolver queries currently in flight across all name servers.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.LookupsTotal,
		m.BreakerTripsTotal,
		m.WhoisCacheHitsTotal,
		m.WhoisCacheMissesTotal,
		m.ResolverInflight,
	} {
		registerIgnoringDuplicate(reg, c)
	}

	return m
}

// registerIgnoringDuplicate registers c, tolerating only
// AlreadyRegisteredError rather than discarding every error.
func registerIgnoringDuplicate(reg prometheus.Registerer, c prometheus.Collector) {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			panic(err)
		}
	}
}

// ObserveOutcome increments LookupsTotal for the given outcome label
// ("response", "nxdomain", "timeout", "error").
func (m *Registry) ObserveOutcome(outcome string) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveBreakerTrip increments BreakerTripsTotal. Called from the
// Breaker predicates of internal/resolver and internal/whois when they
// fire.
func (m *Registry) ObserveBreakerTrip() {
	m.BreakerTripsTotal.Inc()
}

// ObserveCacheResult increments WhoisCacheHitsTotal or
// WhoisCacheMissesTotal depending on hit.
func (m *Registry) ObserveCacheResult(hit bool) {
	if hit {
		m.WhoisCacheHitsTotal.Inc()
		return
	}
	m.WhoisCacheMissesTotal.Inc()
}

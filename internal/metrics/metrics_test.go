package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func counterVecValue(t *testing.T, cv *prometheus.CounterVec, label string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, cv.WithLabelValues(label).Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewRegistersAgainstProvidedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewTwiceOnSameRegistererDoesNotPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.NotPanics(t, func() {
		New(reg)
		New(reg)
	})
}

func TestObserveOutcomeIncrementsLabelledCounter(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveOutcome("response")
	m.ObserveOutcome("response")
	m.ObserveOutcome("timeout")

	assert.Equal(t, float64(2), counterVecValue(t, m.LookupsTotal, "response"))
	assert.Equal(t, float64(1), counterVecValue(t, m.LookupsTotal, "timeout"))
}

func TestObserveBreakerTrip(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveBreakerTrip()
	m.ObserveBreakerTrip()
	assert.Equal(t, float64(2), counterValue(t, m.BreakerTripsTotal))
}

func TestObserveCacheResult(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveCacheResult(true)
	m.ObserveCacheResult(false)
	m.ObserveCacheResult(false)

	assert.Equal(t, float64(1), counterValue(t, m.WhoisCacheHitsTotal))
	assert.Equal(t, float64(2), counterValue(t, m.WhoisCacheMissesTotal))
}

func TestResolverInflightGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ResolverInflight.Inc()
	m.ResolverInflight.Inc()
	m.ResolverInflight.Dec()
	assert.Equal(t, float64(1), gaugeValue(t, m.ResolverInflight))
}

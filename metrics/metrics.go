package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// for now we will tightly couple to the prometheus collector type
	// the go otel metrics sdk also has a prometheus adapter that implements this interface.
	prometheus.Collector
}

type Metrics struct {
	// CommandCount counts dispatched commands by platform and outcome.
	CommandCount Observer
	// HandlerLatency records how long each command's handler took in seconds.
	HandlerLatency Observer
	// UpstreamLatency records upstream data request times by source.
	UpstreamLatency Observer
	CacheHits       Observer
	CacheMisses     Observer
	// Views tracks the number of live pagination views.
	Views Observer
	// Dropped counts commands dropped by rate limits or full queues.
	Dropped Observer
}

func (m Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CommandCount,
		m.HandlerLatency,
		m.UpstreamLatency,
		m.CacheHits,
		m.CacheMisses,
		m.Views,
		m.Dropped,
	}
}

// Nop returns metrics which record nothing.
// It is convenient for tests and for the CLI commands that don't serve.
func Nop() *Metrics {
	n := func(name string) Observer {
		return NewPromGauge(prometheus.NewGauge(prometheus.GaugeOpts{Name: name}))
	}
	return &Metrics{
		CommandCount:    n("command_count"),
		HandlerLatency:  n("handler_latency"),
		UpstreamLatency: n("upstream_latency"),
		CacheHits:       n("cache_hits"),
		CacheMisses:     n("cache_misses"),
		Views:           n("views"),
		Dropped:         n("dropped"),
	}
}

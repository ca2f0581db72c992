package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the node's Prometheus surface, served by the admin HTTP
// listener's /metrics endpoint. Plain gauges rather than a custom
// Collector: every value here is already tracked in a table this process
// owns, there is no external kernel structure to poll on each scrape.
type Metrics struct {
	reg *prometheus.Registry

	filesOpen    prometheus.Gauge
	procsLive    prometheus.Gauge
	filesEvicted prometheus.Counter
	procsEvicted prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		filesOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "overthere", Name: "open_files", Help: "Currently open file handles.",
		}),
		procsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "overthere", Name: "live_procs", Help: "Currently tracked child processes.",
		}),
		filesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "overthere", Name: "files_evicted_total", Help: "File handles closed by the TTL sweep.",
		}),
		procsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "overthere", Name: "procs_evicted_total", Help: "Processes reaped by the TTL sweep.",
		}),
	}
	reg.MustRegister(m.filesOpen, m.procsLive, m.filesEvicted, m.procsEvicted)
	return m
}

// ObserveEviction records the outcome of one housekeeping sweep.
func (m *Metrics) ObserveEviction(files, procs int) {
	m.filesEvicted.Add(float64(files))
	m.procsEvicted.Add(float64(procs))
}

// Registry exposes the underlying registry for the admin HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

package floodlight

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	controllerHealthyDesc = prometheus.NewDesc(
		prometheus.BuildFQName("labflow", "controller", "healthy"),
		"controller healthy status.",
		[]string{"addr"},
		nil)
)

// MetricsCollector .
type MetricsCollector struct {
	addr    string
	healthy atomic.Bool
}

func newMetricsCollector(addr string) *MetricsCollector {
	return &MetricsCollector{addr: addr}
}

// GetMetricsCollector .
func (d *Driver) GetMetricsCollector() prometheus.Collector {
	return d.mCol
}

// Describe .
func (e *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- controllerHealthyDesc
}

// Collect .
func (e *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	var healthy float64
	if e.healthy.Load() {
		healthy = 1
	}
	ch <- prometheus.MustNewConstMetric(
		controllerHealthyDesc,
		prometheus.GaugeValue,
		healthy,
		e.addr,
	)
}

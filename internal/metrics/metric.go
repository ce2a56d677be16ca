package metrics

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

var (
	// DefaultLabels .
	DefaultLabels = []string{"host"}
)

// Metric names.
const (
	MetricErrorCount        = "labflow_error_total"
	MetricProvisionCount    = "labflow_connections_provisioned_total"
	MetricTeardownCount     = "labflow_connections_torn_down_total"
	MetricRuleCount         = "labflow_flow_rules_total"
	MetricActiveConnections = "labflow_connections_active"
)

// Metrics .
type Metrics struct {
	host       string
	reg        *prometheus.Registry
	collectors map[string]prometheus.Collector
}

// New creates the metrics of labflow on its own registry, plus the extra collectors.
func New(host string, cols ...prometheus.Collector) (*Metrics, error) {
	m := &Metrics{
		host:       host,
		reg:        prometheus.NewRegistry(),
		collectors: map[string]prometheus.Collector{},
	}

	for _, c := range []struct {
		name, desc string
		labels     []string
		gauge      bool
	}{
		{MetricErrorCount, "labflow errors", []string{"op"}, false},
		{MetricProvisionCount, "provisioned connections", []string{"result"}, false},
		{MetricTeardownCount, "torn down connections", []string{"result"}, false},
		{MetricRuleCount, "flow rule operations", []string{"op", "result"}, false},
		{MetricActiveConnections, "connections provisioned by this process and not torn down", nil, true},
	} {
		var err error
		if c.gauge {
			err = m.RegisterGauge(c.name, c.desc, c.labels)
		} else {
			err = m.RegisterCounter(c.name, c.desc, c.labels)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, col := range cols {
		if err := m.reg.Register(col); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	return m, nil
}

// RegisterCounter .
func (m *Metrics) RegisterCounter(name, desc string, labels []string) error {
	var col = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: desc,
		},
		lo.Union(labels, DefaultLabels),
	)

	if err := m.reg.Register(col); err != nil {
		return errors.Wrap(err, "")
	}
	m.collectors[name] = col

	return nil
}

// RegisterGauge .
func (m *Metrics) RegisterGauge(name, desc string, labels []string) error {
	var col = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: desc,
		},
		lo.Union(labels, DefaultLabels),
	)

	if err := m.reg.Register(col); err != nil {
		return errors.Wrap(err, "")
	}

	m.collectors[name] = col

	return nil
}

// Incr .
func (m *Metrics) Incr(name string, labels map[string]string) error {
	return m.Add(name, 1, labels)
}

// Add .
func (m *Metrics) Add(name string, value float64, labels map[string]string) error {
	var collector, exists = m.collectors[name]
	if !exists {
		return errors.Newf("collector %s not found", name)
	}

	labels = m.appendLabel(labels, "host", m.host)
	switch col := collector.(type) {
	case *prometheus.GaugeVec:
		col.With(labels).Add(value)
	case *prometheus.CounterVec:
		col.With(labels).Add(value)
	default:
		return errors.Newf("collector %s is not counter or gauge", name)
	}

	return nil
}

// Decr .
func (m *Metrics) Decr(name string, labels map[string]string) error {
	var collector, exists = m.collectors[name]
	if !exists {
		return errors.Newf("collector %s not found", name)
	}

	labels = m.appendLabel(labels, "host", m.host)
	switch col := collector.(type) {
	case *prometheus.GaugeVec:
		col.With(labels).Dec()
	default:
		return errors.Newf("collector %s is not gauge", name)
	}

	return nil
}

// IncrError .
func (m *Metrics) IncrError(op string) {
	_ = m.Incr(MetricErrorCount, map[string]string{"op": op})
}

func (m *Metrics) appendLabel(labels map[string]string, key, value string) map[string]string {
	if labels != nil {
		labels[key] = value
	} else {
		labels = map[string]string{key: value}
	}
	return labels
}

// Gatherer .
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.reg
}

// Handler .
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kazz187/inspectguild/pkg/cerr"
)

const namespace = "inspectguild"

type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "assignment",
		Name:      "operations_total",
		Help:      "Assignment engine operations by outcome code.",
	}, []string{"operation", "code"})
	reg.MustRegister(ops)
	return &Metrics{registry: reg, operations: ops}
}

// Observe counts one engine operation under the cerr code of its error.
func (m *Metrics) Observe(operation string, err error) {
	m.operations.WithLabelValues(operation, cerr.CodeOf(err).String()).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

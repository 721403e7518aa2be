package metrics

import (
	"github.com/openziti/virgo/kernel/engine"
	"github.com/openziti/virgo/kernel/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "virgo"

// PrometheusObserver keeps lifecycle counters for scraping while virgo runs as a server.
type PrometheusObserver struct {
	launched   *prometheus.CounterVec
	terminated prometheus.Counter
	running    prometheus.Gauge
	failures   *prometheus.CounterVec
}

func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		launched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_launched_total",
			Help:      "Game instances launched, by mode.",
		}, []string{"mode"}),
		terminated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_terminated_total",
			Help:      "Game instances terminated.",
		}),
		running: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "games_running",
			Help:      "Running managed instances seen by the last listing.",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Failed provider operations, by operation and error kind.",
		}, []string{"op", "kind"}),
	}
}

func (o *PrometheusObserver) Launched(instance model.ManagedInstance) {
	o.launched.WithLabelValues(instance.Mode).Inc()
}

func (o *PrometheusObserver) Listed(instances []model.ManagedInstance) {
	o.running.Set(float64(len(instances)))
}

func (o *PrometheusObserver) Terminated(ids []string) {
	o.terminated.Add(float64(len(ids)))
}

func (o *PrometheusObserver) Failed(op engine.Op, err error) {
	o.failures.WithLabelValues(string(op), engine.KindOf(err).String()).Inc()
}

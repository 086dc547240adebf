package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric registered by this module.
const Namespace = "sidebars"

// IncrementalCounter counts events by label values.
type IncrementalCounter interface {
	Increment(val ...string)
}

// Setter records the current value of a labeled quantity.
type Setter interface {
	Set(v float64, val ...string)
	Reset()
}

type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// NewCounterWithRegistry registers a counter vector with reg. Registering
// the same name twice on one registry returns the existing collector.
func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) IncrementalCounter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	}, labels)

	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			vec = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			panic(err)
		}
	}

	return &Counter{Name: name, Help: help, vec: vec}
}

type Gauge struct {
	Name string
	Help string

	vec *prometheus.GaugeVec
}

func (g *Gauge) Set(v float64, val ...string) {
	g.vec.WithLabelValues(val...).Set(v)
}

func (g *Gauge) Reset() {
	g.vec.Reset()
}

// NewGaugeWithRegistry registers a gauge vector with reg, reusing an
// existing collector of the same name.
func NewGaugeWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) Setter {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	}, labels)

	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			vec = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			panic(err)
		}
	}

	return &Gauge{Name: name, Help: help, vec: vec}
}

// Nop discards every observation. It stands in when no registry is configured.
type Nop struct{}

func (Nop) Increment(...string) {}
func (Nop) Set(float64, ...string) {}
func (Nop) Reset() {}

// GetHandlerForRegistry returns an HTTP handler for serving Prometheus metrics from a custom registry.
func GetHandlerForRegistry(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

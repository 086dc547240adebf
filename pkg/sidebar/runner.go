package sidebar

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/enclava/sidebars/pkg/metric"
	"github.com/enclava/sidebars/pkg/server"
)

// NewDocumentGauge registers the gauge reporting how many documents each
// sidebar references.
func NewDocumentGauge(reg prometheus.Registerer) metric.Setter {
	return metric.NewGaugeWithRegistry(reg, "documents", "Number of documents referenced per sidebar.", "sidebar")
}

// RecordDocuments replaces the gauge values with the counts of r.
func RecordDocuments(g metric.Setter, r *Registry) {
	g.Reset()
	for _, name := range r.Names() {
		g.Set(float64(len(DocIDs(r.sidebars[name]))), name)
	}
}

// Run serves the registry over HTTP and blocks until the context is
// canceled or an error occurs.
func (r *Registry) Run(ctx context.Context, opt ...server.Option) error {
	return Serve(ctx, r, nil, opt...)
}

// Serve mounts the sidebar handler on a new server and blocks until the
// context is canceled. Request counts and document gauges are registered
// on reg; a nil reg gets a fresh registry.
func Serve(ctx context.Context, p Provider, reg *prometheus.Registry, opt ...server.Option) error {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	requests := metric.NewCounterWithRegistry(reg, "requests_total",
		"Sidebar export requests by route and status code.", "route", "status")
	RecordDocuments(NewDocumentGauge(reg), p.Registry())

	opts := append([]server.Option{server.WithRegistry(reg)}, opt...)
	opts = append(opts, server.WithHandler("/", Handler(p, WithRequestCounter(requests))))

	slog.Info("serving sidebars", "sidebars", p.Registry().Names())

	return server.New(opts...).Serve(ctx)
}

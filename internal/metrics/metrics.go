// Package metrics exposes parse statistics in the Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/genv-lang/genv/internal/diagnostic"
)

const namespace = "genv"

// Collector owns the parser metrics and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	parses      *prometheus.CounterVec
	duration    prometheus.Histogram
	files       prometheus.Counter
	diagnostics *prometheus.CounterVec
}

// NewCollector registers the parser metrics in registry. A nil registry
// means a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parser",
				Name:      "parses_total",
				Help:      "Root parses by result (ok, error).",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "parser",
				Name:      "parse_duration_seconds",
				Help:      "Wall time of root parses, nested modules included.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		files: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parser",
				Name:      "files_loaded_total",
				Help:      "Source files read, nested modules included.",
			},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parser",
				Name:      "diagnostics_total",
				Help:      "Diagnostics reported by severity and code.",
			},
			[]string{"severity", "code"},
		),
	}

	registry.MustRegister(c.parses, c.duration, c.files, c.diagnostics)
	return c
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// RecordParse records one root parse. diags may be nil.
func (c *Collector) RecordParse(ok bool, files int, diags *diagnostic.List, elapsed time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.parses.WithLabelValues(result).Inc()
	c.duration.Observe(elapsed.Seconds())
	c.files.Add(float64(files))

	if diags == nil {
		return
	}
	for _, e := range diags.Entries() {
		code := "UNKNOWN"
		if e.Diagnostic.Kind != nil {
			code = e.Diagnostic.Kind.Code()
		}
		c.diagnostics.WithLabelValues(e.Severity.String(), code).Inc()
	}
}

// Handler serves the registry over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
